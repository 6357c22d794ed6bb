package domain

type OrderStatus string

const (
	OrderSuccess  OrderStatus = "success"
	OrderPending  OrderStatus = "pending"
	OrderRefunded OrderStatus = "refunded"
)

// Train is the immutable topology of one service: stations in order,
// per-leg pricing and timing, uniform seat capacity per leg. Leg j runs
// from Stations[j] to Stations[j+1]. Only Released ever changes, and
// only from false to true.
type Train struct {
	ID            string
	StationNum    int
	SeatNum       int
	Stations      []string
	Prices        []int // len StationNum-1, price of leg j
	TravelTimes   []int // len StationNum-1, minutes on leg j
	StopoverTimes []int // len StationNum-2, minutes stopped at interior station j+1
	StartTime     int   // minute of day at the origin station
	SaleFirst     int   // first boarding day index on sale, inclusive
	SaleLast      int   // last boarding day index on sale, inclusive
	Type          byte
	Released      bool
}

// Legs is the number of seat slots per boarding day.
func (t *Train) Legs() int { return t.StationNum - 1 }

// StationIndex returns the position of name on the route, or -1.
func (t *Train) StationIndex(name string) int {
	for i, s := range t.Stations {
		if s == name {
			return i
		}
	}
	return -1
}

// Order is one purchase attempt. Everything but Status is fixed at
// creation; ID doubles as the creation sequence for FIFO ordering.
type Order struct {
	ID       int64
	Username string
	TrainID  string
	Day      int // boarding day index of the train's origin run
	FromIdx  int
	ToIdx    int
	Count    int
	Price    int // per-seat price of the purchased segment
	Status   OrderStatus
}

func (o *Order) Total() int { return o.Price * o.Count }

type User struct {
	Username  string
	Password  string
	Name      string
	MailAddr  string
	Privilege int
}

// StationStop is one row of a projected timetable. The origin has no
// arrival and the terminus has no departure; HasArrival/HasDeparture
// mark the valid halves. Days are absolute day indexes.
type StationStop struct {
	Station      string
	ArrDay       int
	ArrMinute    int
	DepDay       int
	DepMinute    int
	HasArrival   bool
	HasDeparture bool
	CumPrice     int // cumulative price from the origin
	SeatsLeft    int // remaining seats on the leg leaving this station
}

// TicketQuote is a priced, timed segment of one train on one day.
type TicketQuote struct {
	TrainID   string
	From      string
	To        string
	DepDay    int
	DepMinute int
	ArrDay    int
	ArrMinute int
	Price     int // per seat
	Seats     int
}

// Duration is the elapsed minutes from departure to arrival.
func (q TicketQuote) Duration() int {
	return (q.ArrDay-q.DepDay)*24*60 + q.ArrMinute - q.DepMinute
}

// TransferPlan is a two-train itinerary joined at Via.
type TransferPlan struct {
	First  TicketQuote
	Second TicketQuote
	Via    string
}

// TotalPrice sums both per-seat segment prices.
func (p TransferPlan) TotalPrice() int { return p.First.Price + p.Second.Price }

// TotalTime spans from the first departure to the final arrival,
// including any layover at the transfer station.
func (p TransferPlan) TotalTime() int {
	return (p.Second.ArrDay-p.First.DepDay)*24*60 + p.Second.ArrMinute - p.First.DepMinute
}
