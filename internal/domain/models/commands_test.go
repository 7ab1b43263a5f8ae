package models

import "testing"

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		wantType CommandType
		wantArgs []string
	}{
		{input: "/collect 12", wantType: CommandCollect, wantArgs: []string{"12"}},
		{input: "EGGS 4 white", wantType: CommandCollect, wantArgs: []string{"4", "white"}},
		{input: "/sell 3f2a Mary Jones 6.50", wantType: CommandSell, wantArgs: []string{"3f2a", "Mary", "Jones", "6.50"}},
		{input: "inventory", wantType: CommandStock},
		{input: "  ", wantType: CommandUnknown},
		{input: "hello there", wantType: CommandUnknown, wantArgs: []string{"there"}},
	}

	for _, tt := range tests {
		got := ParseCommand(tt.input)
		if got.Type != tt.wantType {
			t.Errorf("ParseCommand(%q).Type = %s, want %s", tt.input, got.Type, tt.wantType)
		}
		if len(got.Args) != len(tt.wantArgs) {
			t.Errorf("ParseCommand(%q).Args = %v, want %v", tt.input, got.Args, tt.wantArgs)
			continue
		}
		for i := range got.Args {
			if got.Args[i] != tt.wantArgs[i] {
				t.Errorf("ParseCommand(%q).Args = %v, want %v", tt.input, got.Args, tt.wantArgs)
				break
			}
		}
	}
}

func TestParseQuantity(t *testing.T) {
	t.Parallel()

	for input, want := range map[string]int{"12": 12, " 7 ": 7, "1": 1} {
		if got, err := ParseQuantity(input); err != nil || got != want {
			t.Errorf("ParseQuantity(%q) = %d, %v", input, got, err)
		}
	}
	for _, input := range []string{"", "0", "-3", "twelve", "4.5"} {
		if _, err := ParseQuantity(input); err == nil {
			t.Errorf("ParseQuantity(%q) succeeded", input)
		}
	}
}
