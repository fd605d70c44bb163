package form

import "github.com/vango-dev/salesdash/pkg/api"

// Login is the sign-in form.
type Login struct {
	Phone    string `json:"phone" validate:"min=10"`
	Password string `json:"password" validate:"min=2"`
}

func (Login) Messages() Messages {
	return Messages{
		"phone":    "Phone is required",
		"password": "Password is required",
	}
}

// Request converts the form to its API body.
func (f Login) Request() api.LoginRequest {
	return api.LoginRequest{Phone: f.Phone, Password: f.Password}
}

// Register is the sign-up form.
type Register struct {
	Name     string `json:"name" validate:"min=2"`
	Phone    string `json:"phone" validate:"min=10,number"`
	Email    string `json:"email" validate:"email"`
	Address  string `json:"address" validate:"min=5"`
	Password string `json:"password" validate:"min=6,strongpassword"`
}

func (Register) Messages() Messages {
	return Messages{
		"name":                    "Name must be at least 2 characters",
		"phone.min":               "Phone number must be at least 10 characters",
		"phone.number":            "Phone number must contain only numbers",
		"email":                   "Please enter a valid email address",
		"address":                 "Address must be at least 5 characters",
		"password.min":            "Password must be at least 6 characters",
		"password.strongpassword": "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character",
	}
}

// Request converts the form to its API body.
func (f Register) Request() api.RegisterRequest {
	return api.RegisterRequest{
		Name:     f.Name,
		Phone:    f.Phone,
		Email:    f.Email,
		Address:  f.Address,
		Password: f.Password,
	}
}

var customerMessages = Messages{
	"name":             "Customer name is required",
	"identityNo":       "Identity number must be at least 8 characters",
	"npwp":             "NPWP must be at least 15 characters",
	"email":            "Invalid email format",
	"phone":            "Phone number must be 10-13 digits",
	"mobile_phone":     "Mobile phone number must be 10-13 digits",
	"provinceCode":     "Province code is required",
	"cityCode":         "City code is required",
	"address.required": "Address is required",
	"address.min":      "Address must be more than 4 characters",
	"companyType":      "Company type must be person or company",
}

// Customer is the create-customer form.
type Customer struct {
	Name         string `json:"name" validate:"required"`
	IdentityNo   string `json:"identityNo" validate:"omitempty,min=8"`
	NPWP         string `json:"npwp" validate:"omitempty,min=15"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"omitempty,phone"`
	MobilePhone  string `json:"mobile_phone" validate:"omitempty,phone"`
	ProvinceCode string `json:"provinceCode" validate:"required"`
	CityCode     string `json:"cityCode" validate:"required"`
	Address      string `json:"address" validate:"required,min=5"`
	CompanyType  string `json:"companyType" validate:"oneof=person company"`
}

func (Customer) Messages() Messages { return customerMessages }

// Payload converts the form to its API body.
func (f Customer) Payload() api.CustomerPayload {
	return api.CustomerPayload{
		Name:         f.Name,
		IdentityNo:   f.IdentityNo,
		NPWP:         f.NPWP,
		Email:        f.Email,
		Phone:        f.Phone,
		MobilePhone:  f.MobilePhone,
		ProvinceCode: f.ProvinceCode,
		CityCode:     f.CityCode,
		Address:      f.Address,
		CompanyType:  f.CompanyType,
	}
}

// CustomerEdit is the edit-customer form. Location and company type are
// fixed after creation.
type CustomerEdit struct {
	Name        string `json:"name" validate:"required"`
	IdentityNo  string `json:"identityNo" validate:"omitempty,min=8"`
	NPWP        string `json:"npwp" validate:"omitempty,min=15"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,phone"`
	MobilePhone string `json:"mobile_phone" validate:"omitempty,phone"`
	Address     string `json:"address" validate:"required,min=5"`
}

func (CustomerEdit) Messages() Messages { return customerMessages }

// Payload converts the form to its API body.
func (f CustomerEdit) Payload() api.CustomerPayload {
	return api.CustomerPayload{
		Name:        f.Name,
		IdentityNo:  f.IdentityNo,
		NPWP:        f.NPWP,
		Email:       f.Email,
		Phone:       f.Phone,
		MobilePhone: f.MobilePhone,
		Address:     f.Address,
	}
}

// EditCustomer prefills the edit form from a loaded customer.
func EditCustomer(c api.CustomerDetail) CustomerEdit {
	return CustomerEdit{
		Name:        c.Name,
		IdentityNo:  c.IdentityNo,
		NPWP:        c.NPWP,
		Email:       c.Email,
		Phone:       c.Phone,
		MobilePhone: c.MobilePhone,
		Address:     c.Address,
	}
}

// ChangePassword is the change-password form.
type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

func (ChangePassword) Messages() Messages {
	return Messages{
		"currentPassword":          "Current password is required",
		"newPassword":              "New password must be at least 6 characters",
		"confirmPassword.required": "Please confirm your new password",
		"confirmPassword.eqfield":  "Passwords do not match",
	}
}

// Request converts the form to its API body.
func (f ChangePassword) Request() api.ChangePasswordRequest {
	return api.ChangePasswordRequest{
		CurrentPassword:         f.CurrentPassword,
		NewPassword:             f.NewPassword,
		NewPasswordConfirmation: f.ConfirmPassword,
	}
}

// ChangePasswordFields maps API field names to form field names.
var ChangePasswordFields = map[string]string{
	"newPasswordConfirmation": "confirmPassword",
}
