package mail

import (
	"fmt"
	"strings"
	"time"
)

// AppointmentDecisionEmail renders the notification sent to a patient when a
// doctor approves or declines their appointment request. Declines include the
// doctor's stated reason when one was given.
func AppointmentDecisionEmail(patientName, doctorName string, approved bool, date time.Time, timeSlot, reason string) (subject, html string) {
	headerColor := "#ef4444"
	statusText := "Declined"
	if approved {
		headerColor = "#10b981"
		statusText = "Approved"
	}

	reasonRow := ""
	if !approved && reason != "" {
		reasonRow = fmt.Sprintf(`<p style="margin: 5px 0;"><strong>Reason:</strong> %s</p>`, reason)
	}

	subject = "Appointment " + statusText
	html = fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e5e7eb; border-radius: 12px;">
        <div style="background-color: %s; padding: 20px; border-radius: 12px 12px 0 0; text-align: center;">
            <h1 style="color: white; margin: 0;">Appointment %s</h1>
        </div>
        <div style="padding: 20px;">
            <p>Dear <strong>%s</strong>,</p>
            <p>Your appointment with <strong>Dr. %s</strong> has been <strong>%s</strong>.</p>

            <div style="background-color: #f3f4f6; padding: 15px; border-radius: 8px; margin: 20px 0;">
                <p style="margin: 5px 0;"><strong>Date:</strong> %s</p>
                <p style="margin: 5px 0;"><strong>Time:</strong> %s</p>
                %s
            </div>

            <p>If you have any questions, please contact our support.</p>
            <p>Best regards,<br/>Mediland Team</p>
        </div>
    </div>`,
		headerColor, statusText, patientName, doctorName, strings.ToLower(statusText),
		date.Format("Mon Jan 02 2006"), timeSlot, reasonRow)
	return subject, html
}

// BookingReceivedEmail renders the confirmation sent to a patient right after
// they book, while the request awaits the doctor's review.
func BookingReceivedEmail(patientName, doctorName string, date time.Time, timeSlot string) (subject, html string) {
	subject = "Appointment Under Review"
	html = fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #e5e7eb; border-radius: 12px;">
        <div style="background-color: #3b82f6; padding: 20px; border-radius: 12px 12px 0 0; text-align: center;">
            <h1 style="color: white; margin: 0;">Appointment Under Review</h1>
        </div>
        <div style="padding: 20px;">
            <p>Dear <strong>%s</strong>,</p>
            <p>Thank you for booking an appointment with <strong>Dr. %s</strong>. Your request is currently <strong>under review</strong>.</p>

            <div style="background-color: #f3f4f6; padding: 15px; border-radius: 8px; margin: 20px 0;">
                <p style="margin: 5px 0;"><strong>Date:</strong> %s</p>
                <p style="margin: 5px 0;"><strong>Time:</strong> %s</p>
                <p style="margin: 5px 0;"><strong>Status:</strong> PENDING / UNDER REVIEW</p>
            </div>

            <p>You will receive another email once the doctor approves or declines your request.</p>
            <p>Best regards,<br/>Mediland Team</p>
        </div>
    </div>`,
		patientName, doctorName, date.Format("Mon Jan 02 2006"), timeSlot)
	return subject, html
}
