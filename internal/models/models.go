package models

import "time"

const (
	AppointmentStatusPending   = "pending"
	AppointmentStatusDelivered = "delivered"

	UserRoleAdmin = "admin"
	UserRoleUser  = "user"
)

type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	Avatar       string    `bson:"avatar,omitempty" json:"avatar,omitempty"`
	BloodGroup   string    `bson:"bloodGroup,omitempty" json:"bloodGroup,omitempty"`
	District     string    `bson:"district,omitempty" json:"district,omitempty"`
	Upazila      string    `bson:"upazila,omitempty" json:"upazila,omitempty"`
	Role         string    `bson:"role" json:"role"`
	PasswordHash string    `bson:"passwordHash,omitempty" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Test struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Image       string    `bson:"image" json:"image"`
	Description string    `bson:"description" json:"description"`
	Price       float64   `bson:"price" json:"price"`
	Date        string    `bson:"date" json:"date"`
	Slots       int       `bson:"slots" json:"slots"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
}

// TestSnapshot is the state of a test frozen into an appointment at booking
// time, so later edits to the test do not rewrite booking history.
type TestSnapshot struct {
	TestID      string  `bson:"_id" json:"_id"`
	Name        string  `bson:"name" json:"name"`
	Image       string  `bson:"image" json:"image"`
	Description string  `bson:"description" json:"description"`
	Price       float64 `bson:"price" json:"price"`
	Date        string  `bson:"date" json:"date"`
	Slots       int     `bson:"slots" json:"slots"`
}

type BookingUser struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
}

type Appointment struct {
	ID                 string       `bson:"_id,omitempty" json:"id"`
	TestData           TestSnapshot `bson:"testData" json:"testData"`
	User               BookingUser  `bson:"user" json:"user"`
	Status             string       `bson:"status" json:"status"`
	Result             string       `bson:"result,omitempty" json:"result,omitempty"`
	ResultDeliveryDate string       `bson:"resultDeliveryDate,omitempty" json:"resultDeliveryDate,omitempty"`
	CreatedAt          time.Time    `bson:"createdAt" json:"createdAt"`
}

type Banner struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	Name       string    `bson:"name" json:"name"`
	Image      string    `bson:"image" json:"image"`
	Title      string    `bson:"title" json:"title"`
	Text       string    `bson:"text" json:"text"`
	CouponCode string    `bson:"couponCode,omitempty" json:"couponCode,omitempty"`
	CouponRate int       `bson:"couponRate,omitempty" json:"couponRate,omitempty"`
	IsActive   bool      `bson:"isActive" json:"isActive"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

type Recommendation struct {
	ID    string `bson:"_id,omitempty" json:"id"`
	Title string `bson:"title" json:"title"`
	Text  string `bson:"text" json:"text"`
	Image string `bson:"image,omitempty" json:"image,omitempty"`
}

type District struct {
	ID   string `bson:"_id,omitempty" json:"id"`
	Name string `bson:"name" json:"name"`
}

type Upazila struct {
	ID         string `bson:"_id,omitempty" json:"id"`
	DistrictID string `bson:"districtId" json:"districtId"`
	Name       string `bson:"name" json:"name"`
}
