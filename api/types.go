package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Level is a course or learning path difficulty.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// User is the profile of the signed-in user.
type User struct {
	ID                int    `json:"id" yaml:"id"`
	Username          string `json:"username" yaml:"username"`
	Email             string `json:"email" yaml:"email"`
	FirstName         string `json:"first_name" yaml:"first_name"`
	LastName          string `json:"last_name" yaml:"last_name"`
	IsPremium         bool   `json:"is_premium" yaml:"is_premium"`
	IsAdmin           bool   `json:"is_admin" yaml:"is_admin"`
	Bio               string `json:"bio,omitempty" yaml:"bio,omitempty"`
	ProfilePicture    string `json:"profile_picture,omitempty" yaml:"profile_picture,omitempty"`
	TotalLearningTime int    `json:"total_learning_time" yaml:"total_learning_time"`
	CoursesCompleted  int    `json:"courses_completed" yaml:"courses_completed"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// AdminUser is a user as listed in the admin panel.
type AdminUser struct {
	User
	IsActive   bool    `json:"is_active"`
	DateJoined string  `json:"date_joined"`
	LastLogin  *string `json:"last_login"`
}

// AuthResponse is returned by login and registration.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,notblank"`
}

// Registration is the sign-up payload.
type Registration struct {
	Username        string `json:"username" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
}

// ProfileUpdate is the editable part of a profile.
type ProfileUpdate struct {
	Username       string `json:"username" validate:"required,notblank"`
	Email          string `json:"email" validate:"required,email"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture,omitempty" validate:"omitempty,url"`
}

// Course is a published course.
type Course struct {
	ID                 int      `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Image              string   `json:"image"`
	Language           string   `json:"language"`
	Level              Level    `json:"level"`
	Duration           int      `json:"duration"`
	Instructor         string   `json:"instructor,omitempty"`
	Rating             float64  `json:"rating"`
	ReviewsCount       int      `json:"reviews_count"`
	CreatedAt          string   `json:"created_at,omitempty"`
	UpdatedAt          string   `json:"updated_at,omitempty"`
	IsPublished        bool     `json:"is_published"`
	LearningObjectives []string `json:"learning_objectives,omitempty"`
	Modules            []Module `json:"modules,omitempty"`
	ModulesCount       int      `json:"modules_count,omitempty"`
}

// Module is a chapter of a course.
type Module struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OrderNum    int       `json:"order_num"`
	Duration    int       `json:"duration"`
	Sections    []Section `json:"sections"`
}

// Section is a unit of content in a module.
type Section struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Content  string `json:"content"`
	Duration int    `json:"duration"`
	OrderNum int    `json:"order_num"`
}

// LearningPath is an ordered set of courses.
type LearningPath struct {
	ID            int          `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Image         string       `json:"image"`
	Slug          string       `json:"slug"`
	SkillLevel    Level        `json:"skill_level"`
	Overview      string       `json:"overview,omitempty"`
	Benefits      []string     `json:"benefits,omitempty"`
	Courses       []PathCourse `json:"courses,omitempty"`
	CoursesCount  int          `json:"courses_count"`
	TotalDuration string       `json:"total_duration,omitempty"`
}

// PathCourse places a course in a learning path.
type PathCourse struct {
	ID            int    `json:"id"`
	Course        int    `json:"course"`
	CourseDetails Course `json:"course_details"`
	Order         int    `json:"order"`
}

// CourseProgress is the user's progress through one course.
type CourseProgress struct {
	ID                 int    `json:"id,omitempty"`
	User               int    `json:"user,omitempty"`
	Course             int    `json:"course,omitempty"`
	CourseTitle        string `json:"course_title,omitempty"`
	CourseImage        string `json:"course_image,omitempty"`
	ProgressPercentage int    `json:"progress_percentage"`
	LastAccessed       string `json:"last_accessed,omitempty"`
	Completed          bool   `json:"completed"`
}

// ProgressUpdate reports progress on a course. Nil fields are left unchanged.
type ProgressUpdate struct {
	CourseID           int   `json:"-" validate:"gt=0"`
	ProgressPercentage *int  `json:"progress_percentage,omitempty" validate:"omitempty,min=0,max=100"`
	Completed          *bool `json:"completed,omitempty"`
}

// Plan is a subscription plan.
type Plan struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	PriceMonthly Amount   `json:"price_monthly"`
	PriceAnnual  Amount   `json:"price_annual"`
	Currency     string   `json:"currency,omitempty"`
	Features     []string `json:"features"`
	IsActive     bool     `json:"is_active"`
}

// PaymentStatus is the processing state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Payment is a payment made by the user.
type Payment struct {
	ID            int           `json:"id"`
	User          int           `json:"user"`
	Plan          *int          `json:"plan"`
	PlanName      string        `json:"plan_name,omitempty"`
	Amount        Amount        `json:"amount"`
	Currency      string        `json:"currency"`
	Status        PaymentStatus `json:"status"`
	PaymentMethod string        `json:"payment_method"`
	TransactionID string        `json:"transaction_id,omitempty"`
	PaymentDate   string        `json:"payment_date"`
}

// PaymentRequest creates a payment.
type PaymentRequest struct {
	Plan          int    `json:"plan" validate:"gt=0"`
	Amount        Amount `json:"amount" validate:"required"`
	Currency      string `json:"currency" validate:"required,len=3"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card orange_money airtel_money mvola"`
}

// Subscription is a plan subscription.
type Subscription struct {
	ID        int    `json:"id"`
	User      int    `json:"user"`
	Plan      int    `json:"plan"`
	PlanName  string `json:"plan_name,omitempty"`
	Payment   int    `json:"payment"`
	PaymentID int    `json:"payment_id,omitempty"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Status    string `json:"status"`
	AutoRenew bool   `json:"auto_renew"`
}

// SubscriptionRequest subscribes to a plan.
type SubscriptionRequest struct {
	PlanID        int    `json:"plan_id" validate:"gt=0"`
	PaymentMethod string `json:"payment_method" validate:"required,notblank"`
}

// Certificate is a course completion certificate.
type Certificate struct {
	ID            int     `json:"id"`
	User          int     `json:"user"`
	UserName      string  `json:"user_name,omitempty"`
	Course        int     `json:"course"`
	CourseTitle   string  `json:"course_title,omitempty"`
	Title         string  `json:"title"`
	IssueDate     string  `json:"issue_date"`
	CertificateID string  `json:"certificate_id"`
	ExpiryDate    *string `json:"expiry_date"`
	IsValid       bool    `json:"is_valid"`
}

// Verification is the result of checking a certificate.
type Verification struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		CertificateID string `json:"certificateId"`
		CourseName    string `json:"courseName"`
		UserName      string `json:"userName"`
		IssueDate     string `json:"issueDate"`
	} `json:"data,omitempty"`
}

// Valid reports whether the certificate was recognised.
func (v Verification) Valid() bool {
	return v.Status == "valid"
}

// StatusMessage is the acknowledgement returned by action endpoints.
type StatusMessage struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Dashboard holds the admin panel totals.
type Dashboard struct {
	TotalUsers        int         `json:"total_users"`
	PremiumUsers      int         `json:"premium_users"`
	TotalCourses      int         `json:"total_courses"`
	TotalCertificates int         `json:"total_certificates"`
	RecentUsers       []AdminUser `json:"recent_users"`
}

// Page is a list response. The backend answers either with a paginated
// envelope or with a bare array; both decode into a Page.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type pageEnvelope[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// UnmarshalJSON accepts both list shapes.
func (p *Page[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		*p = Page[T]{Count: len(items), Results: items}
		return nil
	}

	var env pageEnvelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	*p = Page[T](env)
	return nil
}

// Amount is a decimal money value. The backend serialises decimals as
// strings; plain JSON numbers are accepted too.
type Amount string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(n.String())
	return nil
}

// Float parses the amount.
func (a Amount) Float() (float64, error) {
	if a == "" {
		return 0, nil
	}
	return strconv.ParseFloat(string(a), 64)
}
