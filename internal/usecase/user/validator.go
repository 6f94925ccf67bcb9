package user

import (
	"product-catalog/internal/validation"
)

func loginRules() validation.Table {
	return validation.Table{
		{Field: "email", Rules: []validation.Rule{validation.Required(), validation.Email()}},
		{Field: "password", Rules: []validation.Rule{validation.Required()}},
	}
}

func registerRules(emailTaken validation.UniqueFunc) validation.Table {
	return validation.Table{
		{Field: "name", Rules: []validation.Rule{validation.Required(), validation.String(), validation.Max(255)}},
		{Field: "email", Rules: []validation.Rule{
			validation.Required(), validation.Max(255), validation.Email(), validation.Unique(emailTaken),
		}},
		{Field: "password", Rules: []validation.Rule{validation.Required(), validation.Min(5), validation.Confirmed()}},
	}
}

func forgotPasswordRules() validation.Table {
	return validation.Table{
		{Field: "email", Rules: []validation.Rule{validation.Required(), validation.Max(255), validation.Email()}},
	}
}

func resetPasswordRules() validation.Table {
	return validation.Table{
		{Field: "email", Rules: []validation.Rule{validation.Required(), validation.Max(255), validation.Email()}},
		{Field: "token", Rules: []validation.Rule{validation.Required()}},
		{Field: "password", Rules: []validation.Rule{validation.Required(), validation.Min(5), validation.Confirmed()}},
	}
}
