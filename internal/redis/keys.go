package redisx

const ns = "clubtix:v1"

func ChannelEventsChanged() string {
	return ns + ":events:changed"
}
