package speech_session

import "object-scale-control/command"

type Interface interface {
	Start(onCommand func(command.Command))
	Stop()
	IsListening() bool
	CurrentState() State
}
