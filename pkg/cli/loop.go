package cli

import "sync"

// Buffer size of the input channel.
const inputChSize = 128

// A serial event loop. Events and redraw requests may come from any goroutine;
// the callbacks always run on the goroutine that called Run.
type loop struct {
	inputCh  chan event
	handleCb func(event)
	redrawCb func(redrawFlag)

	redrawCh    chan struct{}
	redrawFull  bool
	redrawMutex sync.Mutex

	returnCh chan loopReturn
}

type loopReturn struct {
	line string
	err  error
}

// A terminal event, a sig.Event or an internal request.
type event any

// Flag to the redraw callback.
type redrawFlag uint

// Bit flags for redrawFlag.
const (
	// fullRedraw is set when Redraw has been called with full = true since
	// the last redraw.
	fullRedraw redrawFlag = 1 << iota
	// finalRedraw is set on the last redraw before Run returns.
	finalRedraw
)

func newLoop(handleCb func(event), redrawCb func(redrawFlag)) *loop {
	return &loop{
		inputCh:  make(chan event, inputChSize),
		handleCb: handleCb,
		redrawCb: redrawCb,
		redrawCh: make(chan struct{}, 1),
		returnCh: make(chan loopReturn, 1),
	}
}

// Redraw requests a redraw. It never blocks.
func (lp *loop) Redraw(full bool) {
	lp.redrawMutex.Lock()
	defer lp.redrawMutex.Unlock()
	if full {
		lp.redrawFull = true
	}
	select {
	case lp.redrawCh <- struct{}{}:
	default:
	}
}

// Input provides an event, blocking while the event buffer is full. It gives
// up and returns false when stop is closed.
func (lp *loop) Input(ev event, stop <-chan struct{}) bool {
	select {
	case lp.inputCh <- ev:
		return true
	case <-stop:
		return false
	}
}

// Return requests Run to return. Only the first call in each run has an
// effect.
func (lp *loop) Return(line string, err error) {
	select {
	case lp.returnCh <- loopReturn{line, err}:
	default:
	}
}

// HasReturned returns whether Return has been called during the current run.
func (lp *loop) HasReturned() bool {
	return len(lp.returnCh) == 1
}

// Run runs the loop until Return is called. Events queued together are
// handled before the next redraw.
func (lp *loop) Run() (string, error) {
	for {
		var flag redrawFlag
		if lp.takeRedrawFull() {
			flag |= fullRedraw
		}
		lp.redrawCb(flag)
		select {
		case ev := <-lp.inputCh:
		consume:
			for {
				lp.handleCb(ev)
				select {
				case ret := <-lp.returnCh:
					lp.redrawCb(lp.finalFlag())
					return ret.line, ret.err
				default:
				}
				select {
				case ev = <-lp.inputCh:
				default:
					break consume
				}
			}
		case ret := <-lp.returnCh:
			lp.redrawCb(lp.finalFlag())
			return ret.line, ret.err
		case <-lp.redrawCh:
		}
	}
}

func (lp *loop) finalFlag() redrawFlag {
	if lp.takeRedrawFull() {
		return finalRedraw | fullRedraw
	}
	return finalRedraw
}

func (lp *loop) takeRedrawFull() bool {
	lp.redrawMutex.Lock()
	defer lp.redrawMutex.Unlock()
	full := lp.redrawFull
	lp.redrawFull = false
	return full
}
