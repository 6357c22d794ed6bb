// Package schedule projects a train's timetable onto a boarding day:
// per-station arrival/departure timestamps, cumulative price from the
// origin, and remaining seats for display.
package schedule

import (
	"fmt"

	"github.com/railbook/rail-go/internal/domain"
	"github.com/railbook/rail-go/internal/ledger"
	"github.com/railbook/rail-go/internal/repository"
)

const minutesPerDay = 24 * 60

type Projector struct {
	ledger *ledger.SeatLedger
}

func New(l *ledger.SeatLedger) *Projector {
	return &Projector{ledger: l}
}

// Project walks the route accumulating travel and stopover minutes.
// day is the origin departure day; the running day offset only ever
// grows as the clock rolls past midnight.
func (p *Projector) Project(t *domain.Train, day int) []domain.StationStop {
	stops := timetable(t, day)

	seats := p.ledger.Remaining(t.ID, day, t.Legs(), t.SeatNum)
	for j := range stops {
		if j < t.Legs() {
			stops[j].SeatsLeft = seats[j]
		}
	}

	return stops
}

// Quote prices and times a [fromIdx, toIdx) segment on one run.
func (p *Projector) Quote(t *domain.Train, day, fromIdx, toIdx int) (domain.TicketQuote, error) {
	const op = "schedule.Quote"

	if fromIdx < 0 || toIdx >= t.StationNum || fromIdx >= toIdx {
		return domain.TicketQuote{}, fmt.Errorf("%s: [%d,%d): %w",
			op, fromIdx, toIdx, repository.ErrInvalidRoute)
	}

	stops := timetable(t, day)
	from, to := stops[fromIdx], stops[toIdx]

	return domain.TicketQuote{
		TrainID:   t.ID,
		From:      from.Station,
		To:        to.Station,
		DepDay:    from.DepDay,
		DepMinute: from.DepMinute,
		ArrDay:    to.ArrDay,
		ArrMinute: to.ArrMinute,
		Price:     to.CumPrice - from.CumPrice,
		Seats:     p.ledger.Available(t.ID, day, fromIdx, toIdx, t.SeatNum),
	}, nil
}

// DepartureOffset is how many days after the origin departure the
// train leaves station fromIdx. It converts a boarding day at an
// intermediate station back to the origin run day.
func DepartureOffset(t *domain.Train, fromIdx int) int {
	off, _ := DepartureAt(t, fromIdx)
	return off
}

// DepartureAt is the day offset and minute of day at which the train
// leaves station idx, relative to the origin departure day.
func DepartureAt(t *domain.Train, idx int) (dayOffset, minute int) {
	stops := timetable(t, 0)
	return stops[idx].DepDay, stops[idx].DepMinute
}

func timetable(t *domain.Train, day int) []domain.StationStop {
	stops := make([]domain.StationStop, t.StationNum)

	minute := t.StartTime
	offset := 0
	price := 0

	for j := 0; j < t.StationNum; j++ {
		stops[j].Station = t.Stations[j]
		stops[j].CumPrice = price

		if j > 0 {
			stops[j].HasArrival = true
			stops[j].ArrDay = day + offset
			stops[j].ArrMinute = minute

			if j < t.StationNum-1 {
				minute += t.StopoverTimes[j-1]
				offset += minute / minutesPerDay
				minute %= minutesPerDay
			}
		}

		if j < t.StationNum-1 {
			stops[j].HasDeparture = true
			stops[j].DepDay = day + offset
			stops[j].DepMinute = minute

			price += t.Prices[j]
			minute += t.TravelTimes[j]
			offset += minute / minutesPerDay
			minute %= minutesPerDay
		}
	}

	return stops
}
