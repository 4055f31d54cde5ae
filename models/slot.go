package models

import "time"

// SlotStatus is the lifecycle state of a slot.
type SlotStatus string

const (
	SlotStatusActive    SlotStatus = "Active"
	SlotStatusBooked    SlotStatus = "Booked"
	SlotStatusCancelled SlotStatus = "Cancelled"
	SlotStatusHoliday   SlotStatus = "Holiday"
)

// Holiday marker constants.
const (
	HolidayMarkerTime     = "00:00"
	HolidayMarkerLocation = "On Leave"
)

// Slot is one provider-scoped, dated unit of bookable availability.
type Slot struct {
	ID              string     `bson:"id" firestore:"id" json:"id"`
	ProviderID      string     `bson:"providerId" firestore:"providerId" json:"providerId"`
	Date            string     `bson:"date" firestore:"date" json:"date"`                                     // "2006-01-02"
	Time            string     `bson:"time" firestore:"time" json:"time"`                                     // "15:04", provider-local
	DurationMinutes int        `bson:"durationMinutes" firestore:"durationMinutes" json:"durationMinutes"`    // 0 for holiday markers
	LocationLabel   string     `bson:"locationLabel" firestore:"locationLabel" json:"locationLabel"`
	IsBooked        bool       `bson:"isBooked" firestore:"isBooked" json:"isBooked"`
	Status          SlotStatus `bson:"status" firestore:"status" json:"status"`

	PatientID    string `bson:"patientId,omitempty" firestore:"patientId,omitempty" json:"patientId,omitempty"`
	PatientName  string `bson:"patientName,omitempty" firestore:"patientName,omitempty" json:"patientName,omitempty"`
	PatientPhone string `bson:"patientPhone,omitempty" firestore:"patientPhone,omitempty" json:"patientPhone,omitempty"`

	// Provider snapshot, written at booking time for read-side display.
	ProviderName           string `bson:"providerName,omitempty" firestore:"providerName,omitempty" json:"providerName,omitempty"`
	ProviderSpecialization string `bson:"providerSpecialization,omitempty" firestore:"providerSpecialization,omitempty" json:"providerSpecialization,omitempty"`
	ProviderPhotoRef       string `bson:"providerPhotoRef,omitempty" firestore:"providerPhotoRef,omitempty" json:"providerPhotoRef,omitempty"`

	AdminMessage string    `bson:"adminMessage,omitempty" firestore:"adminMessage,omitempty" json:"adminMessage,omitempty"`
	CreatedAt    time.Time `bson:"createdAt" firestore:"createdAt" json:"createdAt"`
	Version      int       `bson:"version" firestore:"version" json:"version"`
}

// IsLive reports whether the slot still takes part in the day's schedule.
func (s Slot) IsLive() bool {
	return s.Status != SlotStatusCancelled
}

// Instant is the sortable "date time" key used by the history views.
func (s Slot) Instant() string {
	return s.Date + " " + s.Time
}

// ProviderSnapshot is the denormalized provider data copied onto a booked slot.
type ProviderSnapshot struct {
	Name           string `json:"providerName"`
	Specialization string `json:"providerSpecialization"`
	PhotoRef       string `json:"providerPhotoRef,omitempty"`
}

// PatientInfo identifies the occupant of a booked slot.
type PatientInfo struct {
	ID    string `json:"patientId"`
	Name  string `json:"patientName"`
	Phone string `json:"patientPhone,omitempty"`
}

// SlotPatch lists the optional fields an update may set. Nil fields are left untouched.
type SlotPatch struct {
	Status                 *SlotStatus
	IsBooked               *bool
	AdminMessage           *string
	PatientID              *string
	PatientName            *string
	PatientPhone           *string
	ProviderName           *string
	ProviderSpecialization *string
	ProviderPhotoRef       *string
}

// CancelPatch turns a booked slot into cancelled history.
func CancelPatch(message string) SlotPatch {
	status := SlotStatusCancelled
	booked := false
	return SlotPatch{
		Status:       &status,
		IsBooked:     &booked,
		AdminMessage: &message,
	}
}

// BookingPatch claims a slot for a patient and records the provider snapshot.
func BookingPatch(patient PatientInfo, provider ProviderSnapshot) SlotPatch {
	status := SlotStatusBooked
	booked := true
	return SlotPatch{
		Status:                 &status,
		IsBooked:               &booked,
		PatientID:              &patient.ID,
		PatientName:            &patient.Name,
		PatientPhone:           &patient.Phone,
		ProviderName:           &provider.Name,
		ProviderSpecialization: &provider.Specialization,
		ProviderPhotoRef:       &provider.PhotoRef,
	}
}

// Apply writes the non-nil patch fields onto s.
func (p SlotPatch) Apply(s *Slot) {
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.IsBooked != nil {
		s.IsBooked = *p.IsBooked
	}
	if p.AdminMessage != nil {
		s.AdminMessage = *p.AdminMessage
	}
	if p.PatientID != nil {
		s.PatientID = *p.PatientID
	}
	if p.PatientName != nil {
		s.PatientName = *p.PatientName
	}
	if p.PatientPhone != nil {
		s.PatientPhone = *p.PatientPhone
	}
	if p.ProviderName != nil {
		s.ProviderName = *p.ProviderName
	}
	if p.ProviderSpecialization != nil {
		s.ProviderSpecialization = *p.ProviderSpecialization
	}
	if p.ProviderPhotoRef != nil {
		s.ProviderPhotoRef = *p.ProviderPhotoRef
	}
}

// Fields returns the patch as store field names mapped to values.
func (p SlotPatch) Fields() map[string]interface{} {
	fields := make(map[string]interface{})
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	if p.IsBooked != nil {
		fields["isBooked"] = *p.IsBooked
	}
	if p.AdminMessage != nil {
		fields["adminMessage"] = *p.AdminMessage
	}
	if p.PatientID != nil {
		fields["patientId"] = *p.PatientID
	}
	if p.PatientName != nil {
		fields["patientName"] = *p.PatientName
	}
	if p.PatientPhone != nil {
		fields["patientPhone"] = *p.PatientPhone
	}
	if p.ProviderName != nil {
		fields["providerName"] = *p.ProviderName
	}
	if p.ProviderSpecialization != nil {
		fields["providerSpecialization"] = *p.ProviderSpecialization
	}
	if p.ProviderPhotoRef != nil {
		fields["providerPhotoRef"] = *p.ProviderPhotoRef
	}
	return fields
}
