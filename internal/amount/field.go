package amount

import "sync"

// Field is a live amount input: every Set or SetRules revalidates
// synchronously and notifies subscribers with the new ValidatedAmount.
type Field struct {
	mu        sync.Mutex
	rules     Rules
	touched   bool
	current   ValidatedAmount
	nextSubID int
	subs      map[int]func(ValidatedAmount)
}

func NewField(rules Rules, initial string) *Field {
	return &Field{
		rules:   rules,
		current: Validate(initial, rules),
		subs:    map[int]func(ValidatedAmount){},
	}
}

// Set replaces the raw input and marks the field as interacted with.
func (f *Field) Set(raw string) ValidatedAmount {
	f.mu.Lock()
	f.touched = true
	f.current = Validate(raw, f.rules)
	v, subs := f.current, f.snapshotSubs()
	f.mu.Unlock()
	notify(subs, v)
	return v
}

// SetRules revalidates the current raw input against new bounds, e.g. after a
// fresh lobby snapshot changes the minimum raise.
func (f *Field) SetRules(rules Rules) ValidatedAmount {
	f.mu.Lock()
	f.rules = rules
	f.current = Validate(f.current.Raw, rules)
	v, subs := f.current, f.snapshotSubs()
	f.mu.Unlock()
	notify(subs, v)
	return v
}

func (f *Field) Value() ValidatedAmount {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *Field) Touched() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.touched
}

// VisibleError is the message to render inline: empty until the user has
// edited the field at least once.
func (f *Field) VisibleError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.touched {
		return ""
	}
	return f.current.Error
}

// Subscribe registers fn for future updates and returns its cancel func.
func (f *Field) Subscribe(fn func(ValidatedAmount)) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextSubID
	f.nextSubID++
	f.subs[id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs, id)
	}
}

func (f *Field) snapshotSubs() []func(ValidatedAmount) {
	out := make([]func(ValidatedAmount), 0, len(f.subs))
	for _, fn := range f.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(ValidatedAmount), v ValidatedAmount) {
	for _, fn := range subs {
		fn(v)
	}
}
