package activity

// Kind names a Status variant.
type Kind string

const (
	KindIdle     Kind = "idle"
	KindLoading  Kind = "loading"
	KindComplete Kind = "complete"
	KindError    Kind = "error"
)

// Status is the generation status of one activity. It is one of Idle,
// Loading, Complete or Failed.
type Status interface {
	Kind() Kind
	isStatus()
}

// Idle means no generation has been attempted.
type Idle struct{}

// Loading means a generation request is in flight.
type Loading struct{}

// Complete carries the generated detail.
type Complete struct {
	Detail Detail
}

// Failed means the most recent attempt failed.
type Failed struct {
	Message string
}

func (Idle) Kind() Kind     { return KindIdle }
func (Loading) Kind() Kind  { return KindLoading }
func (Complete) Kind() Kind { return KindComplete }
func (Failed) Kind() Kind   { return KindError }

func (Idle) isStatus()     {}
func (Loading) isStatus()  {}
func (Complete) isStatus() {}
func (Failed) isStatus()   {}

// StatusView is the wire form of a Status.
type StatusView struct {
	ID     string  `json:"id"`
	Status Kind    `json:"status"`
	Detail *Detail `json:"detail,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// View converts a status into its wire form.
func View(id string, st Status) StatusView {
	v := StatusView{ID: id, Status: st.Kind()}
	switch s := st.(type) {
	case Complete:
		d := s.Detail
		v.Detail = &d
	case Failed:
		v.Error = s.Message
	}
	return v
}

// Terminal reports whether st ends a generation attempt.
func Terminal(st Status) bool {
	switch st.(type) {
	case Complete, Failed:
		return true
	default:
		return false
	}
}
