package domain

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// DateMode selects the search time window.
type DateMode string

// Supported date modes.
const (
	// DateModeToday restricts the search to articles dated today.
	DateModeToday DateMode = "today"
	// DateModeThisMonth restricts the search to the current calendar month.
	DateModeThisMonth DateMode = "this_month"
	// DateModeDaysBack searches the last SearchRequest.DaysBack days.
	DateModeDaysBack DateMode = "days_back"
)

// Subspecialty tags accepted by SearchRequest.
const (
	SubspecialtyAll         = "all"
	SubspecialtyCataract    = "cataract"
	SubspecialtyRefractive  = "refractive"
	SubspecialtyGlaucoma    = "glaucoma"
	SubspecialtyRetina      = "retina"
	SubspecialtyOculoplasty = "oculoplasty"
	SubspecialtyUveitis     = "uveitis"
	SubspecialtyPediatrics  = "pediatrics"
)

// MaxResultsSoftLimit is the threshold above which a request is accepted with
// a warning rather than rejected.
const MaxResultsSoftLimit = 5000

// SearchRequest is the immutable input of one pipeline invocation.
type SearchRequest struct {
	// DateMode selects the time window. DaysBack is only consulted when
	// DateMode == DateModeDaysBack.
	DateMode DateMode `validate:"required,oneof=today this_month days_back"`

	// DaysBack is the window length in days for DateModeDaysBack.
	DaysBack int `validate:"gte=0"`

	// MaxResults caps the number of returned articles.
	MaxResults int `validate:"gt=0"`

	// Subspecialty selects a keyword pack, or "all" for the generic list.
	Subspecialty string `validate:"required,oneof=all cataract refractive glaucoma retina oculoplasty uveitis pediatrics"`

	// Keyword is an optional free-text term. When set it is mandatory in the
	// query, not a boost.
	Keyword string

	// Journal restricts the search to one journal by exact name or ISSN.
	// Empty means all eligible catalog journals.
	Journal string

	// MinImpactFactor drops catalog journals below this impact factor when
	// building the query for DateModeDaysBack searches.
	MinImpactFactor float64 `validate:"gte=0"`

	// Email identifies the caller to the E-utilities service. Required.
	Email string `validate:"required,email"`

	// APIKey is the optional NCBI API key.
	APIKey string
}

var requestValidator = validator.New()

// Validate checks the request before any I/O. Violations surface as
// ConfigError wrapping ErrConfig.
func (r SearchRequest) Validate() error {
	if err := requestValidator.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return NewConfigError(first.Field(), fmt.Sprintf("failed %q validation", first.Tag()))
		}
		return NewConfigError("request", err.Error())
	}
	return nil
}

// WantsSoftLimitWarning reports whether the request exceeds the soft result cap.
func (r SearchRequest) WantsSoftLimitWarning() bool {
	return r.MaxResults > MaxResultsSoftLimit
}
