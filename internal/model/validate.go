package model

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidSlot запись слота не прошла проверку полей
var ErrInvalidSlot = errors.New("invalid slot record")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate проверяет запись слота перед сохранением.
// Некорректные записи отклоняются, значения по умолчанию не подставляются.
func (s *Slot) Validate() error {
	if err := validatorInstance().Struct(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSlot, err)
	}
	return nil
}
