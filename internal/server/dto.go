package server

import (
	"github.com/shopspring/decimal"

	"github.com/shaun-stanley/fairsplit/internal/models"
)

// Request and response shapes for the JSON API. Amounts travel as decimal
// strings, never floats.

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"user"`
}

type createGroupRequest struct {
	Name         string   `json:"name"`
	CurrencyCode string   `json:"currency_code"`
	Members      []string `json:"members"`
}

type addMemberRequest struct {
	Name string `json:"name"`
}

type shareDTO struct {
	MemberID string `json:"member_id"`
	Weight   int64  `json:"weight"`
}

type itemDTO struct {
	ID           string          `json:"id,omitempty"`
	Title        string          `json:"title"`
	Amount       decimal.Decimal `json:"amount"`
	Participants []string        `json:"participants"`
}

type expenseRequest struct {
	Title         string           `json:"title"`
	Amount        decimal.Decimal  `json:"amount"`
	CurrencyCode  string           `json:"currency_code"`
	FxRate        *decimal.Decimal `json:"fx_rate,omitempty"`
	PayerID       string           `json:"payer_id,omitempty"`
	Participants  []string         `json:"participants,omitempty"`
	Shares        []shareDTO       `json:"shares,omitempty"`
	Items         []itemDTO        `json:"items,omitempty"`
	Tax           decimal.Decimal  `json:"tax"`
	Tip           decimal.Decimal  `json:"tip"`
	SurchargeMode string           `json:"surcharge_mode,omitempty"`
	Date          int64            `json:"date"`
	Category      string           `json:"category,omitempty"`
	Note          string           `json:"note,omitempty"`
}

type settlementRequest struct {
	FromID string          `json:"from_id"`
	ToID   string          `json:"to_id"`
	Amount decimal.Decimal `json:"amount"`
	Date   int64           `json:"date"`
	Paid   bool            `json:"paid"`
	Note   string          `json:"note,omitempty"`
}

type memberDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type expenseDTO struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Amount        decimal.Decimal  `json:"amount"`
	CurrencyCode  string           `json:"currency_code"`
	FxRate        *decimal.Decimal `json:"fx_rate,omitempty"`
	PayerID       string           `json:"payer_id,omitempty"`
	Participants  []string         `json:"participants,omitempty"`
	Shares        []shareDTO       `json:"shares,omitempty"`
	Items         []itemDTO        `json:"items,omitempty"`
	Tax           decimal.Decimal  `json:"tax"`
	Tip           decimal.Decimal  `json:"tip"`
	SurchargeMode string           `json:"surcharge_mode"`
	Date          int64            `json:"date"`
	Category      string           `json:"category,omitempty"`
	Note          string           `json:"note,omitempty"`
}

type settlementDTO struct {
	ID     string          `json:"id"`
	FromID string          `json:"from_id"`
	ToID   string          `json:"to_id"`
	Amount decimal.Decimal `json:"amount"`
	Date   int64           `json:"date"`
	Paid   bool            `json:"paid"`
	Note   string          `json:"note,omitempty"`
}

type groupDTO struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	CurrencyCode string          `json:"currency_code"`
	Members      []memberDTO     `json:"members"`
	Expenses     []expenseDTO    `json:"expenses"`
	Settlements  []settlementDTO `json:"settlements"`
	CreatedAt    int64           `json:"created_at"`
}

type balanceDTO struct {
	MemberID string          `json:"member_id"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
}

type transferDTO struct {
	FromID   string          `json:"from_id"`
	FromName string          `json:"from_name"`
	ToID     string          `json:"to_id"`
	ToName   string          `json:"to_name"`
	Amount   decimal.Decimal `json:"amount"`
}

func toExpense(req *expenseRequest) models.Expense {
	e := models.Expense{
		Title:        req.Title,
		Amount:       req.Amount,
		CurrencyCode: req.CurrencyCode,
		FxRate:       req.FxRate,
		PayerID:      req.PayerID,
		Participants: req.Participants,
		Tax:          req.Tax,
		Tip:          req.Tip,
		Date:         req.Date,
		Category:     req.Category,
		Note:         req.Note,
	}
	if req.SurchargeMode != "" {
		e.SurchargeMode = models.Allocation(req.SurchargeMode)
	} else {
		e.SurchargeMode = models.AllocationProportional
	}
	for _, s := range req.Shares {
		e.Shares = append(e.Shares, models.Share{MemberID: s.MemberID, Weight: s.Weight})
	}
	for _, it := range req.Items {
		e.Items = append(e.Items, models.Item{
			ID:           it.ID,
			Title:        it.Title,
			Amount:       it.Amount,
			Participants: it.Participants,
		})
	}
	return e
}

func groupToDTO(g *models.Group) groupDTO {
	dto := groupDTO{
		ID:           g.ID,
		Name:         g.Name,
		CurrencyCode: g.CurrencyCode,
		CreatedAt:    g.CreatedAt,
		Members:      make([]memberDTO, 0, len(g.Members)),
		Expenses:     make([]expenseDTO, 0, len(g.Expenses)),
		Settlements:  make([]settlementDTO, 0, len(g.Settlements)),
	}
	for _, m := range g.Members {
		dto.Members = append(dto.Members, memberDTO{ID: m.ID, Name: m.Name})
	}
	for i := range g.Expenses {
		dto.Expenses = append(dto.Expenses, expenseToDTO(&g.Expenses[i]))
	}
	for _, s := range g.Settlements {
		dto.Settlements = append(dto.Settlements, settlementDTO{
			ID:     s.ID,
			FromID: s.FromID,
			ToID:   s.ToID,
			Amount: s.Amount,
			Date:   s.Date,
			Paid:   s.Paid,
			Note:   s.Note,
		})
	}
	return dto
}

func expenseToDTO(e *models.Expense) expenseDTO {
	dto := expenseDTO{
		ID:            e.ID,
		Title:         e.Title,
		Amount:        e.Amount,
		CurrencyCode:  e.CurrencyCode,
		FxRate:        e.FxRate,
		PayerID:       e.PayerID,
		Participants:  e.Participants,
		Tax:           e.Tax,
		Tip:           e.Tip,
		SurchargeMode: string(e.SurchargeMode),
		Date:          e.Date,
		Category:      e.Category,
		Note:          e.Note,
	}
	for _, s := range e.Shares {
		dto.Shares = append(dto.Shares, shareDTO{MemberID: s.MemberID, Weight: s.Weight})
	}
	for _, it := range e.Items {
		dto.Items = append(dto.Items, itemDTO{
			ID:           it.ID,
			Title:        it.Title,
			Amount:       it.Amount,
			Participants: it.Participants,
		})
	}
	return dto
}
