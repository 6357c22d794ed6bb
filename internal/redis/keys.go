package redisx

import "fmt"

const ns = "railgo:v1"

func KeyTrainSchedule(trainID string, day int) string {
	return fmt.Sprintf("%s:train:%s:%d:schedule", ns, trainID, day)
}

func KeyDirectSearch(from, to string, day int, sort string) string {
	return fmt.Sprintf("%s:search:%s:%s:%d:%s", ns, from, to, day, sort)
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

func ChannelTrainsChanged() string {
	return ns + ":trains:changed"
}
