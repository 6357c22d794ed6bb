// Package console speaks the line-oriented booking protocol: one
// command per line with "-x value" flags, one result block per
// command. It parses and authenticates, then hands typed requests to
// the services; every business failure renders as "-1".
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/railbook/rail-go/internal/calendar"
	"github.com/railbook/rail-go/internal/domain"
	"github.com/railbook/rail-go/internal/service"
	"github.com/railbook/rail-go/internal/service/account"
	"github.com/railbook/rail-go/internal/service/query"
)

const failed = "-1"

type Runner struct {
	svcs   *service.Services
	logger *slog.Logger

	// OnClean, when set, also clears the durable snapshot after the
	// in-memory stores are reset.
	OnClean func(ctx context.Context) error
}

func NewRunner(svcs *service.Services, logger *slog.Logger) *Runner {
	return &Runner{svcs: svcs, logger: logger}
}

// Run executes commands from in until exit or EOF, writing one result
// block per line to out.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		res, quit := r.Execute(ctx, line)
		if _, err := fmt.Fprintln(out, res); err != nil {
			return err
		}
		if quit {
			return nil
		}
	}

	return sc.Err()
}

// Execute runs a single command line and returns its printed result
// and whether the session should end.
func (r *Runner) Execute(ctx context.Context, line string) (string, bool) {
	cmd, args := parse(line)

	switch cmd {
	case "add_user":
		return r.addUser(ctx, args), false
	case "login":
		return status(r.svcs.Account.Login(ctx, args["u"], args["p"])), false
	case "logout":
		return status(r.svcs.Account.Logout(ctx, args["u"])), false
	case "query_profile":
		return r.queryProfile(ctx, args), false
	case "modify_profile":
		return r.modifyProfile(ctx, args), false
	case "add_train":
		return r.addTrain(ctx, args), false
	case "release_train":
		return status(r.svcs.Admin.ReleaseTrain(ctx, args["i"])), false
	case "delete_train":
		return status(r.svcs.Admin.DeleteTrain(ctx, args["i"])), false
	case "query_train":
		return r.queryTrain(ctx, args), false
	case "query_ticket":
		return r.queryTicket(ctx, args), false
	case "query_transfer":
		return r.queryTransfer(ctx, args), false
	case "buy_ticket":
		return r.buyTicket(ctx, args), false
	case "query_order":
		return r.queryOrder(ctx, args), false
	case "refund_ticket":
		return r.refundTicket(ctx, args), false
	case "clean":
		return r.clean(ctx), false
	case "exit":
		return "bye", true
	default:
		r.logger.Warn("unknown command", "cmd", cmd)
		return failed, false
	}
}

func (r *Runner) addUser(ctx context.Context, args map[string]string) string {
	g, err := strconv.Atoi(args["g"])
	if err != nil {
		return failed
	}

	u := domain.User{
		Username:  args["u"],
		Password:  args["p"],
		Name:      args["n"],
		MailAddr:  args["m"],
		Privilege: g,
	}

	return status(r.svcs.Account.AddUser(ctx, args["c"], u))
}

func (r *Runner) queryProfile(ctx context.Context, args map[string]string) string {
	u, err := r.svcs.Account.Profile(ctx, args["c"], args["u"])
	if err != nil {
		return failed
	}

	return profileLine(u)
}

func (r *Runner) modifyProfile(ctx context.Context, args map[string]string) string {
	var upd account.ProfileUpdate
	if v, ok := args["p"]; ok {
		upd.Password = &v
	}
	if v, ok := args["n"]; ok {
		upd.Name = &v
	}
	if v, ok := args["m"]; ok {
		upd.MailAddr = &v
	}
	if v, ok := args["g"]; ok {
		g, err := strconv.Atoi(v)
		if err != nil {
			return failed
		}
		upd.Privilege = &g
	}

	u, err := r.svcs.Account.ModifyProfile(ctx, args["c"], args["u"], upd)
	if err != nil {
		return failed
	}

	return profileLine(u)
}

func (r *Runner) addTrain(ctx context.Context, args map[string]string) string {
	n, err1 := strconv.Atoi(args["n"])
	m, err2 := strconv.Atoi(args["m"])
	if err1 != nil || err2 != nil {
		return failed
	}

	start, err := calendar.MinuteOfDay(args["x"])
	if err != nil {
		return failed
	}

	prices, err1 := splitInts(args["p"])
	travel, err2 := splitInts(args["t"])
	stopover, err3 := splitInts(args["o"])
	if err1 != nil || err2 != nil || err3 != nil {
		return failed
	}

	dates := strings.Split(args["d"], "|")
	if len(dates) != 2 {
		return failed
	}
	first, err1 := calendar.DayIndex(dates[0])
	last, err2 := calendar.DayIndex(dates[1])
	if err1 != nil || err2 != nil {
		return failed
	}

	typ := byte('G')
	if y := args["y"]; y != "" {
		typ = y[0]
	}

	t := &domain.Train{
		ID:            args["i"],
		StationNum:    n,
		SeatNum:       m,
		Stations:      strings.Split(args["s"], "|"),
		Prices:        prices,
		TravelTimes:   travel,
		StopoverTimes: stopover,
		StartTime:     start,
		SaleFirst:     first,
		SaleLast:      last,
		Type:          typ,
	}

	return status(r.svcs.Admin.AddTrain(ctx, t))
}

func (r *Runner) queryTrain(ctx context.Context, args map[string]string) string {
	day, err := calendar.DayIndex(args["d"])
	if err != nil {
		return failed
	}

	t, err := r.svcs.Admin.GetTrain(ctx, args["i"])
	if err != nil {
		return failed
	}

	stops, err := r.svcs.Query.QueryTrain(ctx, args["i"], day)
	if err != nil {
		return failed
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %c", t.ID, t.Type)
	for _, st := range stops {
		b.WriteByte('\n')
		b.WriteString(st.Station)
		b.WriteByte(' ')
		if st.HasArrival {
			fmt.Fprintf(&b, "%s %s", fmtDay(st.ArrDay), calendar.Clock(st.ArrMinute))
		} else {
			b.WriteString("xx-xx xx:xx")
		}
		b.WriteString(" -> ")
		if st.HasDeparture {
			fmt.Fprintf(&b, "%s %s", fmtDay(st.DepDay), calendar.Clock(st.DepMinute))
		} else {
			b.WriteString("xx-xx xx:xx")
		}
		fmt.Fprintf(&b, " %d ", st.CumPrice)
		if st.HasDeparture {
			fmt.Fprintf(&b, "%d", st.SeatsLeft)
		} else {
			b.WriteByte('x')
		}
	}

	return b.String()
}

func (r *Runner) queryTicket(ctx context.Context, args map[string]string) string {
	day, err := calendar.DayIndex(args["d"])
	if err != nil {
		return failed
	}

	sortKey, err := query.ParseSortKey(args["p"])
	if err != nil {
		return failed
	}

	quotes, err := r.svcs.Query.SearchDirect(ctx, args["s"], args["t"], day, sortKey)
	if err != nil {
		return failed
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d", len(quotes))
	for _, q := range quotes {
		b.WriteByte('\n')
		b.WriteString(ticketLine(q))
	}

	return b.String()
}

func (r *Runner) queryTransfer(ctx context.Context, args map[string]string) string {
	day, err := calendar.DayIndex(args["d"])
	if err != nil {
		return failed
	}

	sortKey, err := query.ParseSortKey(args["p"])
	if err != nil {
		return failed
	}

	plan, err := r.svcs.Query.QueryTransfer(ctx, args["s"], args["t"], day, sortKey)
	if err != nil {
		return "0"
	}

	return ticketLine(plan.First) + "\n" + ticketLine(plan.Second)
}

func (r *Runner) buyTicket(ctx context.Context, args map[string]string) string {
	username := args["u"]
	if !r.svcs.Account.IsLoggedIn(username) {
		return failed
	}

	day, err := calendar.DayIndex(args["d"])
	if err != nil {
		return failed
	}

	count, err := strconv.Atoi(args["n"])
	if err != nil {
		return failed
	}

	allowQueue := args["q"] == "true"

	res, err := r.svcs.Reservation.Buy(
		ctx, username, args["i"], day, args["f"], args["t"], count, allowQueue, "",
	)
	if err != nil {
		return failed
	}

	if res.Queued {
		return "queue"
	}

	return strconv.Itoa(res.Order.Total())
}

func (r *Runner) queryOrder(ctx context.Context, args map[string]string) string {
	username := args["u"]
	if !r.svcs.Account.IsLoggedIn(username) {
		return failed
	}

	tickets, err := r.svcs.Query.OrderTickets(ctx, username)
	if err != nil {
		return failed
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d", len(tickets))
	for _, t := range tickets {
		b.WriteByte('\n')
		fmt.Fprintf(&b, "[%s] %s %d %d", t.Order.Status, segmentLine(t.Quote), t.Order.Price, t.Order.Count)
	}

	return b.String()
}

func (r *Runner) refundTicket(ctx context.Context, args map[string]string) string {
	username := args["u"]
	if !r.svcs.Account.IsLoggedIn(username) {
		return failed
	}

	// Without -n the service targets the newest non-refunded order.
	ordinal := 0
	if v, ok := args["n"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return failed
		}
		ordinal = n
	}

	_, err := r.svcs.Reservation.Refund(ctx, username, ordinal)

	return status(err)
}

func (r *Runner) clean(ctx context.Context) string {
	r.svcs.Reset()

	if r.OnClean != nil {
		if err := r.OnClean(ctx); err != nil {
			r.logger.Error("failed to clear snapshot", "error", err)
			return failed
		}
	}

	return "0"
}

// parse splits "cmd -a x -b y" into the command and its flag map.
// Values in this protocol never contain spaces.
func parse(line string) (string, map[string]string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	args := make(map[string]string)
	for i := 1; i+1 < len(fields); i += 2 {
		if strings.HasPrefix(fields[i], "-") {
			args[strings.TrimPrefix(fields[i], "-")] = fields[i+1]
		}
	}

	return fields[0], args
}

func status(err error) string {
	if err != nil {
		return failed
	}
	return "0"
}

func profileLine(u domain.User) string {
	return fmt.Sprintf("%s %s %s %d", u.Username, u.Name, u.MailAddr, u.Privilege)
}

func ticketLine(q domain.TicketQuote) string {
	return fmt.Sprintf("%s %s %s %s -> %s %s %s %d %d",
		q.TrainID,
		q.From, fmtDay(q.DepDay), calendar.Clock(q.DepMinute),
		q.To, fmtDay(q.ArrDay), calendar.Clock(q.ArrMinute),
		q.Price, q.Seats,
	)
}

// segmentLine renders just the route and times; the caller appends the
// order's own price and seat count.
func segmentLine(q domain.TicketQuote) string {
	return fmt.Sprintf("%s %s %s %s -> %s %s %s",
		q.TrainID,
		q.From, fmtDay(q.DepDay), calendar.Clock(q.DepMinute),
		q.To, fmtDay(q.ArrDay), calendar.Clock(q.ArrMinute),
	)
}

// splitInts parses "1|2|3"; "_" and "" mean an empty list (two-station
// trains have no stopovers).
func splitInts(s string) ([]int, error) {
	if s == "" || s == "_" {
		return nil, nil
	}

	parts := strings.Split(s, "|")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	return out, nil
}

func fmtDay(day int) string {
	s, err := calendar.Date(day)
	if err != nil {
		return "xx-xx"
	}
	return s
}
