package wizard

import "testing"

func threeSteps() []StepDescriptor {
	return []StepDescriptor{
		{ID: "a", Title: "A", Valid: func(s *State) bool { return s.ClientData.Name != "" }},
		{ID: "b", Title: "B"},
		{ID: "c", Title: "C"},
	}
}

func TestNewSequencerConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		steps   []StepDescriptor
		wantErr bool
	}{
		{name: "no steps", steps: nil, wantErr: true},
		{name: "empty id", steps: []StepDescriptor{{ID: ""}}, wantErr: true},
		{name: "duplicate id", steps: []StepDescriptor{{ID: "a"}, {ID: "a"}}, wantErr: true},
		{name: "ok", steps: threeSteps()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSequencer(tt.steps, nil, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSequencer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSequencerAdvanceGatesOnValidity(t *testing.T) {
	sq, err := NewSequencer(threeSteps(), nil, nil)
	if err != nil {
		t.Fatalf("NewSequencer(): %v", err)
	}

	sq.Advance() // step "a" invalid: no client name
	if sq.Current() != 0 {
		t.Errorf("Current() = %d; want 0", sq.Current())
	}

	sq.state.ClientData.Name = "Ana"
	sq.Advance()
	if sq.Current() != 1 {
		t.Errorf("Current() = %d; want 1", sq.Current())
	}
	if !sq.state.IsStepCompleted("a") {
		t.Error("step a not marked completed")
	}
}

func TestSequencerDisableNext(t *testing.T) {
	sq, _ := NewSequencer(threeSteps(), &State{ClientData: ClientData{Name: "Ana"}}, nil)

	sq.SetNextDisabled(true)
	sq.Advance()
	if sq.Current() != 0 {
		t.Errorf("Current() = %d; want 0", sq.Current())
	}

	sq.SetNextDisabled(false)
	sq.Advance()
	if sq.Current() != 1 {
		t.Errorf("Current() = %d; want 1", sq.Current())
	}
}

func TestSequencerCompletionFiresOnceAndNeverOverruns(t *testing.T) {
	var completions int
	sq, _ := NewSequencer(threeSteps(), &State{ClientData: ClientData{Name: "Ana"}}, func() { completions++ })

	for i := 0; i < 10; i++ {
		sq.Advance()
	}
	if sq.Current() != 2 {
		t.Errorf("Current() = %d; want 2 (last index)", sq.Current())
	}
	if completions != 1 {
		t.Errorf("completions = %d; want 1", completions)
	}
	if !sq.state.IsStepCompleted("c") {
		t.Error("last step not marked completed")
	}

	// going back re-arms completion
	sq.Retreat()
	sq.Advance()
	sq.Advance()
	if completions != 2 {
		t.Errorf("completions after revisit = %d; want 2", completions)
	}
}

func TestSequencerGoTo(t *testing.T) {
	tests := []struct {
		name  string
		from  int
		to    int
		want  int
	}{
		{name: "forward by one", from: 0, to: 1, want: 1},
		{name: "forward skip rejected", from: 0, to: 2, want: 0},
		{name: "backward", from: 2, to: 1, want: 1},
		{name: "to first", from: 2, to: 0, want: 0},
		{name: "out of bounds low", from: 1, to: -1, want: 1},
		{name: "out of bounds high", from: 1, to: 3, want: 1},
		{name: "same index", from: 1, to: 1, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sq, _ := NewSequencer(threeSteps(), &State{CurrentStep: tt.from}, nil)
			sq.GoTo(tt.to)
			if sq.Current() != tt.want {
				t.Errorf("Current() = %d; want %d", sq.Current(), tt.want)
			}
		})
	}
}

func TestSequencerRetreatStopsAtZero(t *testing.T) {
	sq, _ := NewSequencer(threeSteps(), &State{CurrentStep: 1}, nil)
	sq.Retreat()
	sq.Retreat()
	sq.Retreat()
	if sq.Current() != 0 {
		t.Errorf("Current() = %d; want 0", sq.Current())
	}
}

func TestSequencerTransitionHookToleratesNil(t *testing.T) {
	sq, _ := NewSequencer(threeSteps(), &State{ClientData: ClientData{Name: "Ana"}}, nil)
	sq.OnTransition(nil)
	sq.Advance() // must not panic

	var from, to int
	sq.OnTransition(func(f, tto int) { from, to = f, tto })
	sq.Retreat()
	if from != 1 || to != 0 {
		t.Errorf("transition hook got (%d, %d); want (1, 0)", from, to)
	}
}
