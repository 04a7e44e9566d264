package notifications

import (
	"bytes"
	"html/template"

	"diagnoease-backend/internal/models"
)

const bookingConfirmationTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Hello {{.Name}},</p>
  <p>Your appointment is booked. Details:</p>
  <ul>
    <li>Test: {{.TestName}}</li>
    <li>Date: {{.Date}}</li>
    <li>Price: {{.Price}}</li>
    <li>Booking number: {{.AppointmentID}}</li>
  </ul>
  <p>Please arrive 15 minutes before your sample collection time with a photo ID.</p>
  <p>Thank you.</p>
</body>
</html>`

const reportDeliveredTemplate = `<!DOCTYPE html>
<html>
<body>
  <p>Hello {{.Name}},</p>
  <p>Your report for {{.TestName}} is ready.</p>
  <ul>
    <li>Delivery date: {{.DeliveryDate}}</li>
    <li>Booking number: {{.AppointmentID}}</li>
  </ul>
  <p>You can download it from your dashboard.</p>
</body>
</html>`

var (
	bookingConfirmationTmpl = template.Must(template.New("booking_confirmation").Parse(bookingConfirmationTemplate))
	reportDeliveredTmpl     = template.Must(template.New("report_delivered").Parse(reportDeliveredTemplate))
)

type bookingEmailData struct {
	Name          string
	TestName      string
	Date          string
	Price         float64
	DeliveryDate  string
	AppointmentID string
}

func buildBookingConfirmationHTML(appointment models.Appointment) (string, error) {
	data := bookingEmailData{
		Name:          appointment.User.Name,
		TestName:      appointment.TestData.Name,
		Date:          appointment.TestData.Date,
		Price:         appointment.TestData.Price,
		AppointmentID: appointment.ID,
	}
	var buf bytes.Buffer
	if err := bookingConfirmationTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func buildReportDeliveredHTML(appointment models.Appointment) (string, error) {
	data := bookingEmailData{
		Name:          appointment.User.Name,
		TestName:      appointment.TestData.Name,
		DeliveryDate:  appointment.ResultDeliveryDate,
		AppointmentID: appointment.ID,
	}
	var buf bytes.Buffer
	if err := reportDeliveredTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
