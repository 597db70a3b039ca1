package validation

import (
	"fmt"
	"strings"
)

// RegistrationPayload is the raw role-discriminated registration body.
type RegistrationPayload struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Phone    string `json:"phone" form:"phone"`
	Role     string `json:"role" form:"role"`

	Location   string      `json:"location" form:"location"`
	Skills     FlexStrings `json:"skills" form:"-"`
	Experience FlexInt     `json:"experience" form:"-"`

	CompanyName        string `json:"companyName" form:"companyName"`
	CompanyType        string `json:"companyType" form:"companyType"`
	CompanySize        string `json:"companySize" form:"companySize"`
	CompanyWebsite     string `json:"companyWebsite" form:"companyWebsite"`
	CompanyLocation    string `json:"companyLocation" form:"companyLocation"`
	CompanyDescription string `json:"companyDescription" form:"companyDescription"`
	TaxID              string `json:"taxId" form:"taxId"`
	BusinessLicense    string `json:"businessLicense" form:"businessLicense"`
}

// Account holds the fields every role shares.
type Account struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// Registration is either *ApplicantRegistration or *ProviderRegistration.
type Registration interface {
	Account() Account
	isRegistration()
}

// ApplicantRegistration is a validated applicant sign-up.
type ApplicantRegistration struct {
	account    Account
	Location   string
	Skills     []string
	Experience int
}

func (r *ApplicantRegistration) Account() Account { return r.account }
func (*ApplicantRegistration) isRegistration()    {}

// ProviderRegistration is a validated provider sign-up.
type ProviderRegistration struct {
	account            Account
	CompanyName        string
	CompanyType        string
	CompanySize        string
	CompanyWebsite     string
	CompanyLocation    string
	CompanyDescription string
	TaxID              string
	BusinessLicense    string
}

func (r *ProviderRegistration) Account() Account { return r.account }
func (*ProviderRegistration) isRegistration()    {}

// ParseRegistration validates the shared fields, then the role-specific ones.
func ParseRegistration(p RegistrationPayload) (Registration, error) {
	acct := Account{
		Name:     strings.TrimSpace(p.Name),
		Email:    NormalizeEmail(p.Email),
		Password: p.Password,
		Phone:    strings.TrimSpace(p.Phone),
	}
	if acct.Name == "" || acct.Email == "" || acct.Password == "" || acct.Phone == "" {
		return nil, fmt.Errorf("name, email, password and phone are required")
	}
	if err := ValidateEmail(acct.Email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(acct.Password); err != nil {
		return nil, err
	}
	if err := ValidatePhone(acct.Phone); err != nil {
		return nil, err
	}

	switch strings.TrimSpace(p.Role) {
	case "applicant":
		if p.Experience.Set && p.Experience.Value < 0 {
			return nil, fmt.Errorf("experience must not be negative")
		}
		return &ApplicantRegistration{
			account:    acct,
			Location:   strings.TrimSpace(p.Location),
			Skills:     p.Skills.Values,
			Experience: p.Experience.Value,
		}, nil
	case "provider":
		return &ProviderRegistration{
			account:            acct,
			CompanyName:        strings.TrimSpace(p.CompanyName),
			CompanyType:        strings.TrimSpace(p.CompanyType),
			CompanySize:        strings.TrimSpace(p.CompanySize),
			CompanyWebsite:     strings.TrimSpace(p.CompanyWebsite),
			CompanyLocation:    strings.TrimSpace(p.CompanyLocation),
			CompanyDescription: strings.TrimSpace(p.CompanyDescription),
			TaxID:              strings.TrimSpace(p.TaxID),
			BusinessLicense:    strings.TrimSpace(p.BusinessLicense),
		}, nil
	case "":
		return nil, fmt.Errorf("role is required")
	default:
		return nil, fmt.Errorf("role must be applicant or provider")
	}
}
