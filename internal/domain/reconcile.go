package domain

import "github.com/google/uuid"

type ReconcileReport struct {
	// Relinked counts bookings whose flight pointer was replaced.
	Relinked int
	// Orphans counts distinct booked flights that are missing from the
	// schedule.
	Orphans int
}

// Reconcile makes every booked flight point at the schedule's Flight with the
// same id, so booking and cancelling move the schedule's counters. Booked
// flights absent from the schedule are shared across passengers, one object
// per id. The schedule's counters win over the copies held by bookings.
func Reconcile(account *Account, schedule *FlightSchedule) ReconcileReport {
	canonical := make(map[uuid.UUID]*Flight, schedule.Len())
	for _, f := range schedule.flights {
		if _, seen := canonical[f.ID()]; !seen {
			canonical[f.ID()] = f
		}
	}

	var report ReconcileReport
	for _, p := range account.Passengers() {
		for _, b := range p.BookedFlights() {
			f, ok := canonical[b.flight.ID()]
			if !ok {
				canonical[b.flight.ID()] = b.flight
				report.Orphans++
				continue
			}
			if p.relink(f) {
				report.Relinked++
			}
		}
	}
	return report
}
