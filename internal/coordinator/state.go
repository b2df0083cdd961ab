package coordinator

// State is one step of an invocation.
type State string

const (
	StateIdle         State = "IDLE"
	StateConfigCheck  State = "CONFIG_CHECK"
	StateProviderCall State = "PROVIDER_CALL"
	StateInject       State = "INJECT"
	StateHandshake    State = "HANDSHAKE"
	StateDeliver      State = "DELIVER"
	StateDone         State = "DONE"
	StateFailed       State = "FAILED"
)

// String implements fmt.Stringer.
func (s State) String() string {
	return string(s)
}
