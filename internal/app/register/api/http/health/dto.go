package health

type Input struct{}

type Output struct {
	Body Response
}

type Response struct {
	Status      string `json:"status" example:"OK" doc:"Состояние кассы"`
	Provisioned bool   `json:"provisioned" doc:"Устройство привязано к организации"`
	Writer      int    `json:"writer_queue" doc:"Записей в очереди локальной базы"`
}
