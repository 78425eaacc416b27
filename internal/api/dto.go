package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/shopspring/decimal"

	"github.com/mmynk/kharcha/internal/ledger"
	"github.com/mmynk/kharcha/internal/models"
	"github.com/mmynk/kharcha/internal/service"
)

// ---- Auth ----

type registerRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.DisplayName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Password, validation.Required),
	)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type userResponse struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	DisplayName    string `json:"display_name"`
	CurrencySymbol string `json:"currency_symbol"`
	CreatedAt      int64  `json:"created_at"`
}

type authResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:             user.ID,
		Email:          user.Email,
		DisplayName:    user.DisplayName,
		CurrencySymbol: user.CurrencySymbol,
		CreatedAt:      user.CreatedAt,
	}
}

// ---- People ----

type createPersonRequest struct {
	Name               string `json:"name"`
	TrackingPreference string `json:"tracking_preference"`
}

func (r createPersonRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.TrackingPreference, validation.In(
			string(models.Track), string(models.Ask), string(models.NoTrack),
		)),
	)
}

type restoreRequest struct {
	Mode string `json:"mode"`
}

func (r restoreRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Mode, validation.Required, validation.In(
			string(ledger.RestoreReapply), string(ledger.RestoreStartFresh),
		)),
	)
}

// applyRequest resolves a pending consent decision for one record.
type applyRequest struct {
	PersonName string `json:"person_name"`
	// Track also flips the person's preference to TRACK; false applies
	// this record once and leaves the preference alone.
	Track bool `json:"track"`
}

func (r applyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PersonName, validation.Required, validation.Length(1, 100)),
	)
}

type personResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	TrackingPreference string `json:"tracking_preference"`
	Archived           bool   `json:"archived"`
	CreatedAt          int64  `json:"created_at"`
}

func toPersonResponse(person *models.Person) personResponse {
	return personResponse{
		ID:                 person.ID,
		Name:               person.Name,
		TrackingPreference: string(person.TrackingPreference),
		Archived:           person.Archived,
		CreatedAt:          person.CreatedAt,
	}
}

type personSummaryResponse struct {
	personResponse
	Balance      decimal.Decimal `json:"balance"`
	LastActivity int64           `json:"last_activity"`
}

type entryResponse struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Source    string          `json:"source"`
	ExpenseID string          `json:"expense_id,omitempty"`
	IncomeID  string          `json:"income_id,omitempty"`
	Note      string          `json:"note"`
	Archived  bool            `json:"archived"`
	CreatedAt int64           `json:"created_at"`
}

func toEntryResponses(entries []models.LedgerEntry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:        e.ID,
			Amount:    e.Amount,
			Source:    string(e.Source),
			ExpenseID: e.ExpenseID,
			IncomeID:  e.IncomeID,
			Note:      e.Note,
			Archived:  e.Archived,
			CreatedAt: e.CreatedAt,
		})
	}
	return out
}

type personDetailResponse struct {
	personResponse
	Balance      decimal.Decimal `json:"balance"`
	BalanceLabel string          `json:"balance_label"`
	Entries      []entryResponse `json:"entries"`
}

// ---- Pending decisions ----

type pendingResponse struct {
	PersonName   string `json:"person_name"`
	PersonID     string `json:"person_id,omitempty"`
	PersonExists bool   `json:"person_exists"`
}

func toPendingResponse(p *service.PendingDecision) *pendingResponse {
	if p == nil {
		return nil
	}
	return &pendingResponse{
		PersonName:   p.PersonName,
		PersonID:     p.PersonID,
		PersonExists: p.PersonExists,
	}
}

// ---- Expenses ----

type expenseRequest struct {
	Category     string          `json:"category"`
	PaymentType  string          `json:"payment_type"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Date         string          `json:"date"`
	IsBorrowed   bool            `json:"is_borrowed"`
	BorrowedFrom string          `json:"borrowed_from"`
	IsForOthers  bool            `json:"is_for_others"`
	PaidFor      string          `json:"paid_for"`
}

func (r expenseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Date, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&r.PaymentType, validation.In(
			models.PaymentCash, models.PaymentUPI, models.PaymentCard,
			models.PaymentNetBanking, models.PaymentWallet, models.PaymentOther,
		)),
	)
}

func (r expenseRequest) toModel() *models.Expense {
	return &models.Expense{
		Category:     r.Category,
		PaymentType:  r.PaymentType,
		Amount:       r.Amount,
		Description:  r.Description,
		Date:         r.Date,
		IsBorrowed:   r.IsBorrowed,
		BorrowedFrom: r.BorrowedFrom,
		IsForOthers:  r.IsForOthers,
		PaidFor:      r.PaidFor,
	}
}

type expenseResponse struct {
	ID           string          `json:"id"`
	Category     string          `json:"category"`
	PaymentType  string          `json:"payment_type"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Date         string          `json:"date"`
	IsBorrowed   bool            `json:"is_borrowed"`
	BorrowedFrom string          `json:"borrowed_from,omitempty"`
	IsForOthers  bool            `json:"is_for_others"`
	PaidFor      string          `json:"paid_for,omitempty"`
	CreatedAt    int64           `json:"created_at"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	return expenseResponse{
		ID:           e.ID,
		Category:     e.Category,
		PaymentType:  e.PaymentType,
		Amount:       e.Amount,
		Description:  e.Description,
		Date:         e.Date,
		IsBorrowed:   e.IsBorrowed,
		BorrowedFrom: e.BorrowedFrom,
		IsForOthers:  e.IsForOthers,
		PaidFor:      e.PaidFor,
		CreatedAt:    e.CreatedAt,
	}
}

type saveExpenseResponse struct {
	Expense expenseResponse  `json:"expense"`
	Applied bool             `json:"applied"`
	Pending *pendingResponse `json:"pending,omitempty"`
}

// ---- Incomes ----

type incomeRequest struct {
	Date        string          `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Source      string          `json:"source"`
	PaymentType string          `json:"payment_type"`
	Person      string          `json:"person"`
	Description string          `json:"description"`
}

func (r incomeRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Date, validation.Required, validation.Date("2006-01-02")),
		validation.Field(&r.Source, validation.Required, validation.In(
			models.IncomeSalary, models.IncomeBusiness, models.IncomeInvestment,
			models.IncomeRefund, models.IncomeGift, models.IncomeLoan,
			models.IncomeLoanRepayment, models.IncomeOther,
		)),
		validation.Field(&r.PaymentType, validation.In(
			models.PaymentCash, models.PaymentUPI, models.PaymentCard,
			models.PaymentNetBanking, models.PaymentWallet, models.PaymentOther,
		)),
	)
}

func (r incomeRequest) toModel() *models.Income {
	return &models.Income{
		Date:        r.Date,
		Amount:      r.Amount,
		Source:      r.Source,
		PaymentType: r.PaymentType,
		Person:      r.Person,
		Description: r.Description,
	}
}

type incomeResponse struct {
	ID              string          `json:"id"`
	Date            string          `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	Source          string          `json:"source"`
	PaymentType     string          `json:"payment_type"`
	Person          string          `json:"person,omitempty"`
	Description     string          `json:"description"`
	AppliedToPeople bool            `json:"applied_to_people"`
	CreatedAt       int64           `json:"created_at"`
}

func toIncomeResponse(i *models.Income) incomeResponse {
	return incomeResponse{
		ID:              i.ID,
		Date:            i.Date,
		Amount:          i.Amount,
		Source:          i.Source,
		PaymentType:     i.PaymentType,
		Person:          i.Person,
		Description:     i.Description,
		AppliedToPeople: i.AppliedToPeople,
		CreatedAt:       i.CreatedAt,
	}
}

type saveIncomeResponse struct {
	Income  incomeResponse   `json:"income"`
	Applied bool             `json:"applied"`
	Pending *pendingResponse `json:"pending,omitempty"`
}
