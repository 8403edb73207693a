// Package models defines the core domain models for FairSplit.
//
// # Model Overview
//
//   - Group: a shared ledger scoping members, expenses, and settlements
//   - Member: a participant identity within a group
//   - Expense: a recorded cost with a splitting rule (even, weighted, or itemized)
//   - Item: a line item on an itemized expense with its own participant subset
//   - Share: a weighted split override for one member
//   - Settlement: a recorded real-world payment between two members
//   - User: a registered account that owns groups
//
// # Design Principles
//
//  1. **Stable IDs**: every relationship is expressed through opaque string IDs
//     (UUIDs), never through live object references. Lookups and "contains"
//     checks are ID-set operations.
//  2. **Exact money**: all monetary amounts are decimal.Decimal values. The
//     engine package converts them to integer cents at its boundary so that
//     splitting math never accumulates floating-point drift.
//  3. **Snapshot semantics**: the engine treats a loaded Group aggregate as an
//     immutable snapshot; only the merge operation mutates it in place, and the
//     caller persists the result afterward.
package models
