package service

import (
	"bytes"
	"time"

	"github.com/emersion/go-ical"

	"meetsync/modules/mailer/dto"
)

// BuildICS renders an iCalendar invite for the meeting
func BuildICS(email *dto.MeetingEmail) ([]byte, error) {
	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, icsUID(email))
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, email.StartTime.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, email.EndTime.UTC())
	event.Props.SetText(ical.PropSummary, email.Subject)
	if email.Description != "" {
		event.Props.SetText(ical.PropDescription, email.Description)
	}

	switch email.LocationType {
	case dto.LocationVideo:
		event.Props.SetText(ical.PropLocation, email.JoinURL)
	case dto.LocationPhysical:
		event.Props.SetText(ical.PropLocation, email.Address)
	case dto.LocationPhone:
		event.Props.SetText(ical.PropLocation, email.DialInNumber)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//MeetSync//Meeting Scheduler//EN")
	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func icsUID(email *dto.MeetingEmail) string {
	if email.ICalUID != "" {
		return email.ICalUID
	}
	return email.MeetingID + "@meetsync"
}
