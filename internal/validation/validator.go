package validation

import (
	"strconv"
	"strings"
	"wikiquiz/internal/domain"
)

const (
	DefaultPage  = 1
	DefaultLimit = 5
	MaxLimit     = 50
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateGenerateQuizRequest validates the generate-quiz request body.
// The Wikipedia path gate itself lives in the pipeline, before any
// network access; here only the shape is checked.
func (v *Validator) ValidateGenerateQuizRequest(url string) domain.ValidationErrors {
	var errs domain.ValidationErrors

	if strings.TrimSpace(url) == "" {
		errs = append(errs, domain.NewMissingFieldError("url"))
		return errs
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		errs = append(errs, domain.NewInvalidFormatError("url", url))
	}

	return errs
}

// ValidatePagination parses and bounds the history paging parameters.
// Absent parameters take the defaults; malformed or out-of-range values
// are reported per field.
func (v *Validator) ValidatePagination(pageStr, limitStr string) (int, int, domain.ValidationErrors) {
	var errs domain.ValidationErrors

	page := DefaultPage
	if pageStr != "" {
		parsed, err := strconv.Atoi(pageStr)
		if err != nil {
			errs = append(errs, domain.NewInvalidFormatError("page", pageStr))
		} else if parsed < 1 {
			errs = append(errs, domain.ValidationError{Field: "page", Message: "must be at least 1"})
		} else {
			page = parsed
		}
	}

	limit := DefaultLimit
	if limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			errs = append(errs, domain.NewInvalidFormatError("limit", limitStr))
		} else if parsed < 1 || parsed > MaxLimit {
			errs = append(errs, domain.NewOutOfRangeError("limit", parsed, 1, MaxLimit))
		} else {
			limit = parsed
		}
	}

	return page, limit, errs
}

// ValidateArticleID parses the path id of a delete request.
func (v *Validator) ValidateArticleID(idStr string) (int64, domain.ValidationErrors) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		return 0, domain.ValidationErrors{domain.NewInvalidFormatError("id", idStr)}
	}
	return id, nil
}
