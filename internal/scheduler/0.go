package scheduler

import "github.com/google/wire"

var Provider = wire.NewSet(
	New,
	NewEventBus,
)

type IEmitter interface {
	Emit(ev Event)
}
