package upstream

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zain621/rehmatshipping/internal/domain"
	"github.com/zain621/rehmatshipping/internal/domain/user"
)

// userDTO is the subset of the upstream user object the service relies on.
// Phone and city must be present but may be empty; name and email must be
// non-empty.
type userDTO struct {
	Name    string     `json:"name" validate:"required"`
	Email   string     `json:"email" validate:"required"`
	Phone   *string    `json:"phone" validate:"required"`
	Address addressDTO `json:"address"`
}

type addressDTO struct {
	City *string `json:"city" validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// toDomain validates every record and converts the payload. The first
// invalid record fails the whole payload with domain.ErrParse.
func toDomain(v *validator.Validate, dtos []userDTO) ([]user.User, error) {
	users := make([]user.User, 0, len(dtos))
	for i := range dtos {
		d := &dtos[i]
		if err := v.Struct(d); err != nil {
			return nil, fmt.Errorf("%w: record %d: %s", domain.ErrParse, i, describe(err))
		}
		u, err := user.New(d.Name, d.Email, *d.Address.City, *d.Phone)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		users = append(users, u)
	}
	return users, nil
}

// describe lists missing fields by their JSON path, e.g. "address.city".
func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		ns := fe.Namespace()
		// Namespace is "userDTO.address.city"; drop the struct name.
		if _, rest, ok := strings.Cut(ns, "."); ok {
			ns = rest
		}
		fields = append(fields, ns)
	}
	return "missing " + strings.Join(fields, ", ")
}
