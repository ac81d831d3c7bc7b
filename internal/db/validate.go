package db

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidMatchProfile = errors.New("invalid match profile")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func profileValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("has_rank5", hasRank5)
	})
	return validate
}

// hasRank5 requires at least one entry of a compatibility table to be Rank5.
func hasRank5(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.Map {
		return false
	}
	iter := f.MapRange()
	for iter.Next() {
		if iter.Value().Int() == Rank5 {
			return true
		}
	}
	return false
}

// ValidateMatchProfile checks the invariants relied on by the ranking engine.
func ValidateMatchProfile(p *MatchProfile) error {
	if p == nil {
		return fmt.Errorf("%w: missing", ErrInvalidMatchProfile)
	}
	err := profileValidator().Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: user %d: %s", ErrInvalidMatchProfile, p.UserID, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: user %d: %v", ErrInvalidMatchProfile, p.UserID, err)
}
