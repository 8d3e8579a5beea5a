package http

// This file decodes and validates request bodies. Amount fields accept
// numbers or numeric strings; anything unparseable counts as zero.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"rentledger/internal/core"
	"rentledger/internal/services"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// requestError is a malformed or invalid request body.
type requestError struct {
	msg    string
	fields map[string]string
}

func (e *requestError) Error() string { return e.msg }

// decodeJSON reads a JSON body into dst and validates its struct tags.
// Numbers in untyped fields arrive as json.Number so amounts keep their
// decimal text.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &requestError{msg: "empty request body"}
		}
		return &requestError{msg: "malformed JSON: " + err.Error()}
	}
	if err := validate.Struct(dst); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return &requestError{msg: "invalid input"}
		}
		fields := make(map[string]string, len(ve))
		for _, fe := range ve {
			fields[fe.Field()] = fe.Tag()
		}
		return &requestError{msg: "validation failed", fields: fields}
	}
	return nil
}

// pathID parses the {name} path value as a positive ID.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &requestError{msg: fmt.Sprintf("invalid %s", name)}
	}
	return id, nil
}

// parseOptionalDate parses YYYY-MM-DD; empty yields the zero Date.
func parseOptionalDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("%w: date %q: %v", services.ErrInvalid, s, err)
	}
	return d, nil
}

// sanitizeInput trims and removes control characters except tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

type chargesRequest struct {
	Electricity  any    `json:"electricity"`
	LateFine     any    `json:"late_fine"`
	ExtraAmount  any    `json:"extra_amount"`
	MeterReading any    `json:"meter_reading"`
	Remark       string `json:"remark" validate:"max=500"`
}

func (c chargesRequest) charges() services.Charges {
	return services.Charges{
		Electricity:  core.CoerceAmount(c.Electricity),
		LateFine:     core.CoerceAmount(c.LateFine),
		ExtraAmount:  core.CoerceAmount(c.ExtraAmount),
		MeterReading: core.CoerceReading(c.MeterReading),
		Remark:       sanitizeInput(c.Remark),
	}
}

// paymentRequest is an admin-entered payment.
type paymentRequest struct {
	chargesRequest
	Amount      any    `json:"amount"`
	Month       string `json:"month" validate:"required"`
	PaymentDate string `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	Status      string `json:"status" validate:"omitempty,oneof=Approved Pending"`
}

func (p paymentRequest) payment(tenantID int64) (core.RentPayment, error) {
	date, err := parseOptionalDate(p.PaymentDate)
	if err != nil {
		return core.RentPayment{}, err
	}
	c := p.charges()
	return core.RentPayment{
		TenantID:     tenantID,
		Amount:       core.CoerceAmount(p.Amount),
		Electricity:  c.Electricity,
		LateFine:     c.LateFine,
		ExtraAmount:  c.ExtraAmount,
		MeterReading: c.MeterReading,
		Remark:       c.Remark,
		PaymentDate:  date,
		Month:        strings.TrimSpace(p.Month),
		Status:       core.PaymentStatus(p.Status),
	}, nil
}

type coTenantRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	RelationType string `json:"relation_type" validate:"required,max=50"`
	Contact      string `json:"contact" validate:"required,max=50"`
	Gender       string `json:"gender" validate:"max=20"`
}

func (c coTenantRequest) coTenant() core.CoTenant {
	return core.CoTenant{
		Name:         sanitizeInput(c.Name),
		RelationType: sanitizeInput(c.RelationType),
		Contact:      sanitizeInput(c.Contact),
		Gender:       sanitizeInput(c.Gender),
	}
}

type tenantRequest struct {
	UserID     string            `json:"user_id" validate:"max=128"`
	Name       string            `json:"name" validate:"required,max=100"`
	Contact    string            `json:"contact" validate:"required,max=50"`
	Gender     string            `json:"gender" validate:"max=20"`
	Address    string            `json:"address" validate:"max=500"`
	FinalRent  any               `json:"final_rent"`
	Deposit    any               `json:"deposit"`
	LeaseStart string            `json:"lease_start" validate:"omitempty,datetime=2006-01-02"`
	LeaseEnd   string            `json:"lease_end" validate:"omitempty,datetime=2006-01-02"`
	AssetID    int64             `json:"asset_id" validate:"required,gt=0"`
	CoTenants  []coTenantRequest `json:"co_tenants" validate:"max=10,dive"`
}

func (t tenantRequest) tenant() (core.Tenant, []core.CoTenant, error) {
	start, err := parseOptionalDate(t.LeaseStart)
	if err != nil {
		return core.Tenant{}, nil, err
	}
	end, err := parseOptionalDate(t.LeaseEnd)
	if err != nil {
		return core.Tenant{}, nil, err
	}
	cos := make([]core.CoTenant, 0, len(t.CoTenants))
	for _, c := range t.CoTenants {
		cos = append(cos, c.coTenant())
	}
	return core.Tenant{
		UserID:     strings.TrimSpace(t.UserID),
		Name:       sanitizeInput(t.Name),
		Contact:    sanitizeInput(t.Contact),
		Gender:     sanitizeInput(t.Gender),
		Address:    sanitizeInput(t.Address),
		FinalRent:  core.CoerceAmount(t.FinalRent),
		Deposit:    core.CoerceAmount(t.Deposit),
		LeaseStart: start,
		LeaseEnd:   end,
		AssetID:    t.AssetID,
	}, cos, nil
}

type assetRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=500"`
	DefaultRent any    `json:"default_rent"`
	Status      string `json:"status"`
}

func (a assetRequest) asset() core.Asset {
	return core.Asset{
		Name:        sanitizeInput(a.Name),
		Description: sanitizeInput(a.Description),
		DefaultRent: core.CoerceAmount(a.DefaultRent),
		Status:      core.AssetStatus(strings.TrimSpace(a.Status)),
	}
}

type meterRequest struct {
	Reading any `json:"reading"`
}
