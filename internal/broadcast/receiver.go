package broadcast

// Renderer is the spectator display. Render rebuilds the screen and reloads
// media; Refresh patches values on the current screen.
type Renderer interface {
	Render(s Snapshot)
	Refresh(s Snapshot)
	UpdateTimer(t TimerUpdate)
	Video(cmd VideoCommand)
}

// Receiver routes incoming messages to a Renderer, re-rendering only when
// the structural key moves.
type Receiver struct {
	r        Renderer
	rendered bool
	key      Key
}

func NewReceiver(r Renderer) *Receiver {
	return &Receiver{r: r}
}

func (rc *Receiver) Handle(msg Message) {
	switch m := msg.(type) {
	case StateUpdate:
		key := m.Snapshot.Key()
		if !rc.rendered || key != rc.key {
			rc.rendered = true
			rc.key = key
			rc.r.Render(m.Snapshot)
			return
		}
		rc.r.Refresh(m.Snapshot)
	case TimerUpdate:
		rc.r.UpdateTimer(m)
	case VideoCommand:
		rc.r.Video(m)
	}
}

func (rc *Receiver) HandleJSON(data []byte) error {
	msg, err := Decode(data)
	if err != nil {
		return err
	}
	rc.Handle(msg)
	return nil
}
