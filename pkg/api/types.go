package api

// Ref is a code/name pair used for provinces, cities, sales people and
// other lookups.
type Ref struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Customer is a row of the customer list.
type Customer struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	CompanyType string `json:"companyType"`
	Area        string `json:"area"`
	Province    string `json:"province"`
	City        string `json:"city"`
	Address     string `json:"address"`
	Group       Ref    `json:"group"`
	Status      string `json:"status"`
	Target      Number `json:"target"`
	Achievement Number `json:"achievement"`
	Percentage  Number `json:"percentage"`
	CreatedAt   string `json:"createdAt"`
}

// CustomerDetail is a single customer.
type CustomerDetail struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	CompanyType string `json:"companyType"`
	IdentityNo  string `json:"identityNo"`
	NPWP        string `json:"npwp"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	MobilePhone string `json:"mobilePhone"`
	Area        string `json:"area"`
	Province    Ref    `json:"province"`
	City        Ref    `json:"city"`
	Address     string `json:"address"`
	Group       Ref    `json:"group"`
	Status      string `json:"status"`
	Target      Number `json:"target"`
	Achievement Number `json:"achievement"`
	Percentage  Number `json:"percentage"`
	CreatedAt   string `json:"createdAt"`
}

// CustomerPayload is the body of customer create and update requests.
type CustomerPayload struct {
	Name         string `json:"name"`
	IdentityNo   string `json:"identityNo"`
	NPWP         string `json:"npwp"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	MobilePhone  string `json:"mobile_phone"`
	ProvinceCode string `json:"provinceCode,omitempty"`
	CityCode     string `json:"cityCode,omitempty"`
	Address      string `json:"address"`
	CompanyType  string `json:"companyType,omitempty"`
}

// Transaction is a row of the transaction list.
type Transaction struct {
	ReferenceNo   string `json:"referenceNo"`
	Customer      Ref    `json:"customer"`
	Sales         string `json:"sales"`
	AmountDue     Number `json:"amountDue"`
	AmountUntaxed Number `json:"amountUntaxed"`
	AmountTotal   Number `json:"amountTotal"`
	DateOrder     string `json:"dateOrder"`
	DateDue       string `json:"dateDue"`
	PaidAt        string `json:"paidAt"`
	CreatedAt     string `json:"createdAt"`
}

// TransactionLine is one product line of an invoice.
type TransactionLine struct {
	ProductName    string `json:"productName"`
	Quantity       Number `json:"quantity"`
	Price          Number `json:"price"`
	Discount       Number `json:"discount"`
	PriceSubtotal  Number `json:"priceSubtotal"`
	MarginSubtotal Number `json:"marginSubtotal"`
}

// TransactionDetail is a single invoice with its lines.
type TransactionDetail struct {
	Transaction
	Items []TransactionLine `json:"items"`
}

// Tax returns the tax portion of the invoice total.
func (t Transaction) Tax() Number {
	return t.AmountTotal - t.AmountUntaxed
}

// Payment states of an invoice.
const (
	PaymentPaid    = "paid"
	PaymentPartial = "partial"
	PaymentUnpaid  = "unpaid"
)

// PaymentStatus classifies the invoice as paid, partially paid or unpaid.
func (t Transaction) PaymentStatus() string {
	switch {
	case t.AmountDue == 0 || t.PaidAt != "":
		return PaymentPaid
	case t.AmountDue < t.AmountTotal:
		return PaymentPartial
	default:
		return PaymentUnpaid
	}
}

// DailyAmount is one point of the daily transaction series.
type DailyAmount struct {
	Date   string `json:"date"`
	Amount Number `json:"amount"`
}

// MonthlyAmount compares one month with the same month a year earlier.
type MonthlyAmount struct {
	Month    string `json:"month"`
	Current  Number `json:"current"`
	Previous Number `json:"previous"`
	Growth   Number `json:"growth"`
}

// YearAmount is the transaction total of one year.
type YearAmount struct {
	Year   Int    `json:"year"`
	Amount Number `json:"amount"`
}

// YearlyTransactions compares a year with the previous one.
type YearlyTransactions struct {
	Percentage Number     `json:"percentage"`
	Current    YearAmount `json:"current"`
	Previous   YearAmount `json:"previous"`
}

// TopCustomer is one entry of the top customers ranking.
type TopCustomer struct {
	Customer struct {
		Code        string `json:"code"`
		Name        string `json:"name"`
		CompanyType string `json:"companyType"`
	} `json:"customer"`
	Amount Number `json:"amount"`
}

// Profile is the signed-in user.
type Profile struct {
	Code         string `json:"code"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	ProfileImage string `json:"profileImage"`
	RoleName     string `json:"roleName"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// User is the identity returned next to the token on sign-in.
type User struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	RoleName     string `json:"roleName"`
	ProfileImage string `json:"profileImage"`
}

// LoginResponse carries the issued bearer token and the signed-in user.
type LoginResponse struct {
	Message
	User
	AccessToken string `json:"accessToken"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of PUT /auth/password.
type ChangePasswordRequest struct {
	CurrentPassword         string `json:"currentPassword"`
	NewPassword             string `json:"newPassword"`
	NewPasswordConfirmation string `json:"newPasswordConfirmation"`
}
