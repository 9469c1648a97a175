package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"clinic-booking-chatbot/models"
	"clinic-booking-chatbot/utils"
)

const defaultUrgency = "normal"

var clockTimePattern = regexp.MustCompile(`\d\s*(am|pm)\b`)

// continueBooking runs one booking-flow step: merge entities, interpret the
// free text for the active slot when interpret is set, then prompt for the
// first unfilled slot or confirm.
func (e *ConversationEngine) continueBooking(ctx context.Context, sess *Session, result models.NLPResult, interpret bool) models.Response {
	active, hasActive := sess.State.Slot()

	if resp := e.mergeEntities(ctx, sess, result.Entities); resp != nil {
		return resp
	}

	if interpret && hasActive && !sess.Booking.Has(active) {
		if resp := e.interpretSlot(ctx, sess, active, result.Text); resp != nil {
			return resp
		}
	}

	return e.advance(ctx, sess)
}

// mergeEntities fills unfilled slots from extracted entities. A specialty
// without doctors is refused and keeps the flow at the specialty step.
func (e *ConversationEngine) mergeEntities(ctx context.Context, sess *Session, entities models.EntitySet) models.Response {
	b := &sess.Booking

	if !b.Has(models.SlotSpecialty) && len(entities.Specialties) > 0 {
		if resp := e.fillSpecialty(ctx, sess, entities.Specialties[0]); resp != nil {
			return resp
		}
	}

	if !b.Has(models.SlotDoctor) && len(entities.Doctors) > 0 {
		if b.Has(models.SlotSpecialty) {
			doctors, err := e.gateway.GetAvailableDoctors(ctx, b.Specialty)
			if err != nil {
				return e.catalogError(sess, err)
			}
			if name, ok := matchDoctor(doctors, entities.Doctors[0]); ok {
				b.Fill(models.SlotDoctor, name)
			}
		} else if doctor, ok := e.findDoctor(ctx, entities.Doctors[0]); ok {
			b.Fill(models.SlotSpecialty, doctor.Specialty)
			b.Fill(models.SlotDoctor, doctor.Name)
		}
	}

	b.FillSymptoms(entities.Symptoms)

	if sess.Urgency == "" {
		for _, u := range entities.Urgency {
			if !e.lexicon.IsEmergencyTerm(u) {
				sess.Urgency = u
				break
			}
		}
	}
	return nil
}

func (e *ConversationEngine) fillSpecialty(ctx context.Context, sess *Session, tag string) models.Response {
	doctors, err := e.gateway.GetAvailableDoctors(ctx, tag)
	if err != nil {
		return e.catalogError(sess, err)
	}
	if len(doctors) == 0 {
		sess.State = models.StateCollectingSpecialty
		return e.replies.noDoctors(tag)
	}
	sess.Booking.Fill(models.SlotSpecialty, tag)
	return nil
}

// findDoctor looks a doctor mention up across every specialty. Only exact
// surname matches count here, since there is no specialty to narrow by.
func (e *ConversationEngine) findDoctor(ctx context.Context, mention string) (models.Doctor, bool) {
	want := normalizeDoctorName(mention)
	for _, s := range e.lexicon.Specialties {
		doctors, err := e.gateway.GetAvailableDoctors(ctx, s.Tag)
		if err != nil {
			e.logger.Warn("Doctor lookup failed", zap.String("specialty", s.Tag), zap.Error(err))
			continue
		}
		for _, d := range doctors {
			if normalizeDoctorName(d.Name) == want {
				return d, true
			}
		}
	}
	return models.Doctor{}, false
}

// interpretSlot reads text as the value of slot. It returns nil once the
// slot is filled, or the response to send instead.
func (e *ConversationEngine) interpretSlot(ctx context.Context, sess *Session, slot models.Slot, text string) models.Response {
	text = strings.TrimSpace(text)
	b := &sess.Booking

	var suggestions []string
	switch slot {
	case models.SlotDoctor:
		doctors, err := e.gateway.GetAvailableDoctors(ctx, b.Specialty)
		if err != nil {
			return e.catalogError(sess, err)
		}
		suggestions = doctorNames(doctors[:min(maxDoctorChoices, len(doctors))])
	case models.SlotTime:
		doctor, err := e.selectedDoctor(ctx, sess)
		if err != nil {
			return e.catalogError(sess, err)
		}
		suggestions = doctor.AvailableTimes[:min(maxTimeChoices, len(doctor.AvailableTimes))]
	case models.SlotSpecialty:
		suggestions = e.lexicon.SpecialtyMenu(specialtyMenuLength)
	}

	if e.echoesFilledSlot(sess, slot, text) {
		return e.retrySlot(sess, slot, suggestions)
	}

	switch slot {
	case models.SlotSpecialty:
		tag, ok := e.lexicon.MatchSpecialty(text)
		if !ok {
			return e.retrySlot(sess, slot, suggestions)
		}
		if resp := e.fillSpecialty(ctx, sess, tag); resp != nil {
			return resp
		}
	case models.SlotDoctor:
		doctors, err := e.gateway.GetAvailableDoctors(ctx, b.Specialty)
		if err != nil {
			return e.catalogError(sess, err)
		}
		name, ok := matchDoctor(doctors, text)
		if !ok {
			return e.retrySlot(sess, slot, suggestions)
		}
		b.Fill(models.SlotDoctor, name)
	case models.SlotPatientName:
		if len([]rune(text)) <= 1 {
			return e.retrySlot(sess, slot, nil)
		}
		b.Fill(models.SlotPatientName, text)
	case models.SlotPatientPhone:
		if !utils.IsPhoneNumber(text) {
			return e.retrySlot(sess, slot, nil)
		}
		b.Fill(models.SlotPatientPhone, text)
	case models.SlotTime:
		doctor, err := e.selectedDoctor(ctx, sess)
		if err != nil {
			return e.catalogError(sess, err)
		}
		t, ok := matchTime(doctor.AvailableTimes, text)
		if !ok {
			return e.retrySlot(sess, slot, suggestions)
		}
		b.Fill(models.SlotTime, t)
		if b.Date == "" {
			b.Date = e.placeholderDate
		}
	}

	sess.Attempts = 0
	return nil
}

func (e *ConversationEngine) retrySlot(sess *Session, slot models.Slot, suggestions []string) models.Response {
	sess.Attempts++
	sess.State = slot.CollectingState()
	return e.replies.retry(slot, suggestions, sess.Attempts)
}

// echoesFilledSlot reports whether text just repeats the value of another,
// already-filled slot.
func (e *ConversationEngine) echoesFilledSlot(sess *Session, active models.Slot, text string) bool {
	b := &sess.Booking
	for _, slot := range models.SlotOrder {
		if slot == active || !b.Has(slot) {
			continue
		}
		value := b.Value(slot)
		if strings.EqualFold(text, value) {
			return true
		}
		switch slot {
		case models.SlotSpecialty:
			if strings.EqualFold(text, utils.SpecialtyDisplayName(value)) {
				return true
			}
		case models.SlotDoctor:
			if normalizeDoctorName(text) == normalizeDoctorName(value) {
				return true
			}
		case models.SlotPatientPhone:
			digits := utils.DigitsOnly(text)
			if digits != "" && digits == utils.DigitsOnly(value) {
				return true
			}
		}
	}
	return false
}

// advance moves to the first unfilled slot, or confirms when none is left.
func (e *ConversationEngine) advance(ctx context.Context, sess *Session) models.Response {
	slot, missing := sess.Booking.NextSlot()
	if !missing {
		return e.confirm(ctx, sess)
	}

	sess.State = slot.CollectingState()
	switch slot {
	case models.SlotSpecialty:
		return e.replies.specialtyPrompt()
	case models.SlotDoctor:
		doctors, err := e.gateway.GetAvailableDoctors(ctx, sess.Booking.Specialty)
		if err != nil {
			return e.catalogError(sess, err)
		}
		return e.replies.doctorPrompt(sess.Booking.Specialty, doctors)
	case models.SlotPatientName:
		return e.replies.namePrompt()
	case models.SlotPatientPhone:
		return e.replies.phonePrompt()
	case models.SlotTime:
		doctor, err := e.selectedDoctor(ctx, sess)
		if err != nil {
			return e.catalogError(sess, err)
		}
		return e.replies.timePrompt(doctor)
	}
	return e.replies.fallback()
}

// confirm books the collected data. On failure the session stays in
// CONFIRMING with its data intact and the next message submits again.
func (e *ConversationEngine) confirm(ctx context.Context, sess *Session) models.Response {
	sess.State = models.StateConfirming
	b := &sess.Booking
	if b.Date == "" {
		b.Date = e.placeholderDate
	}
	urgency := sess.Urgency
	if urgency == "" {
		urgency = defaultUrgency
	}

	req := models.BookingRequest{
		Name:      b.PatientName,
		Phone:     b.PatientPhone,
		Doctor:    b.Doctor,
		Specialty: b.Specialty,
		Date:      b.Date,
		Time:      b.Time,
		Symptoms:  b.Symptoms,
		Urgency:   urgency,
	}

	start := time.Now()
	id, err := e.gateway.BookAppointment(ctx, req)
	e.metrics.ObserveBooking(err == nil, time.Since(start).Seconds())
	if err != nil {
		e.logger.Warn("Booking failed", zap.String("session_id", sess.ID), zap.Error(err))
		return e.replies.bookingError(err)
	}

	e.logger.Info("Appointment booked",
		zap.String("session_id", sess.ID),
		zap.Int64("appointment_id", id),
		zap.String("doctor", req.Doctor),
	)
	booked := *b
	sess.reset()
	return e.replies.confirmation(booked, id)
}

func (e *ConversationEngine) catalogError(sess *Session, err error) models.Response {
	e.logger.Error("Doctor catalog unavailable", zap.String("session_id", sess.ID), zap.Error(err))
	sess.State = sess.Booking.DerivedState()
	return e.replies.catalogUnavailable(err)
}

// selectedDoctor returns the catalog entry of the chosen doctor, falling
// back to the first doctor of the specialty.
func (e *ConversationEngine) selectedDoctor(ctx context.Context, sess *Session) (models.Doctor, error) {
	doctors, err := e.gateway.GetAvailableDoctors(ctx, sess.Booking.Specialty)
	if err != nil {
		return models.Doctor{}, err
	}
	for _, d := range doctors {
		if d.Name == sess.Booking.Doctor {
			return d, nil
		}
	}
	if len(doctors) > 0 {
		return doctors[0], nil
	}
	return models.Doctor{Name: sess.Booking.Doctor}, nil
}

func normalizeDoctorName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, ".", "")
	for _, prefix := range []string{"doctor ", "dr "} {
		name = strings.TrimPrefix(name, prefix)
	}
	return strings.TrimSpace(name)
}

// matchDoctor resolves input to a candidate's catalog name: exact surname,
// a candidate named inside the input, or input of 3+ letters inside a name.
func matchDoctor(doctors []models.Doctor, input string) (string, bool) {
	in := normalizeDoctorName(input)
	if in == "" {
		return "", false
	}
	for _, d := range doctors {
		if normalizeDoctorName(d.Name) == in {
			return d.Name, true
		}
	}
	for _, d := range doctors {
		if n := normalizeDoctorName(d.Name); n != "" && strings.Contains(in, n) {
			return d.Name, true
		}
	}
	if len(in) >= 3 {
		for _, d := range doctors {
			if strings.Contains(normalizeDoctorName(d.Name), in) {
				return d.Name, true
			}
		}
	}
	return "", false
}

// matchTime prefers one of the doctor's slots and otherwise accepts any
// input that reads like a clock time, verbatim.
func matchTime(times []string, input string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(input))
	if lower == "" {
		return "", false
	}
	for _, t := range times {
		if lower == t {
			return t, true
		}
	}
	for _, t := range times {
		if strings.Contains(lower, t) {
			return t, true
		}
	}
	if len(lower) >= 2 {
		for _, t := range times {
			if strings.Contains(t, lower) {
				return t, true
			}
		}
	}
	if strings.Contains(lower, ":") || clockTimePattern.MatchString(lower) {
		return strings.TrimSpace(input), true
	}
	return "", false
}
