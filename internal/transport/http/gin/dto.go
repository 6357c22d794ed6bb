package httpgin

type AddTrainRequest struct {
	TrainID       string   `json:"train_id" binding:"required"`
	SeatNum       int      `json:"seat_num" binding:"required,gt=0"`
	Stations      []string `json:"stations" binding:"required,min=2,dive,required"`
	Prices        []int    `json:"prices" binding:"required,min=1"`
	TravelTimes   []int    `json:"travel_times" binding:"required,min=1"`
	StopoverTimes []int    `json:"stopover_times"`
	StartTime     string   `json:"start_time" binding:"required"`
	SaleFirst     string   `json:"sale_first" binding:"required"`
	SaleLast      string   `json:"sale_last" binding:"required"`
	Type          string   `json:"type"`
}

type BuyTicketRequest struct {
	Username   string `json:"username" binding:"required"`
	TrainID    string `json:"train_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
	From       string `json:"from" binding:"required"`
	To         string `json:"to" binding:"required"`
	Count      int    `json:"count" binding:"required,gt=0"`
	AllowQueue bool   `json:"allow_queue"`
}

type RefundTicketRequest struct {
	Username string `json:"username" binding:"required"`
	Ordinal  int    `json:"ordinal"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type AddTrainResponse struct {
	TrainID string `json:"train_id"`
}

type BuyTicketResponse struct {
	OrderID    int64  `json:"order_id"`
	Status     string `json:"status"`
	TotalPrice int    `json:"total_price,omitempty"`
}

type RefundTicketResponse struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}
