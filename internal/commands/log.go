package commands

import (
	"errors"

	"github.com/shaun-stanley/fairsplit/internal/models"
)

var (
	// ErrNothingToUndo is returned when the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrNothingToRedo is returned when the redo stack is empty.
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Log tracks applied commands for one group and supports undo/redo. A fresh
// mutation clears the redo stack, matching the usual editor behavior.
//
// A Log is not safe for concurrent use; the caller serializes writes per
// group, as it already must for the underlying collections.
type Log struct {
	undo []Command
	redo []Command
}

// NewLog returns an empty command log.
func NewLog() *Log {
	return &Log{}
}

// Apply runs the command against the group and records it for undo.
func (l *Log) Apply(g *models.Group, cmd Command) error {
	if err := cmd.Apply(g); err != nil {
		return err
	}
	l.undo = append(l.undo, cmd)
	l.redo = nil
	return nil
}

// Undo reverts the most recent command and returns it.
func (l *Log) Undo(g *models.Group) (Command, error) {
	if len(l.undo) == 0 {
		return nil, ErrNothingToUndo
	}
	cmd := l.undo[len(l.undo)-1]
	inverse := cmd.Invert()
	if err := inverse.Apply(g); err != nil {
		return nil, err
	}
	l.undo = l.undo[:len(l.undo)-1]
	l.redo = append(l.redo, cmd)
	return cmd, nil
}

// Redo re-applies the most recently undone command and returns it.
func (l *Log) Redo(g *models.Group) (Command, error) {
	if len(l.redo) == 0 {
		return nil, ErrNothingToRedo
	}
	cmd := l.redo[len(l.redo)-1]
	if err := cmd.Apply(g); err != nil {
		return nil, err
	}
	l.redo = l.redo[:len(l.redo)-1]
	l.undo = append(l.undo, cmd)
	return cmd, nil
}

// CanUndo reports whether an undo is available.
func (l *Log) CanUndo() bool { return len(l.undo) > 0 }

// CanRedo reports whether a redo is available.
func (l *Log) CanRedo() bool { return len(l.redo) > 0 }
