package types

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks the rank settings.
func (c RankConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Precision, validation.Min(0), validation.Max(10)),
		validation.Field(&c.MaxFontSize, validation.By(nonNegative)),
	)
}

// Validate checks the conversion settings.
func (c ConversionConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Workers, validation.Min(1)),
		validation.Field(&c.StateDir, validation.Required),
	)
}

func nonNegative(value any) error {
	v, _ := value.(float64)
	if v < 0 {
		return validation.NewError("validation_non_negative", "must be zero or positive")
	}
	return nil
}
