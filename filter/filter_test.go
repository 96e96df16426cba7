package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0up4200/sdgrab/schedulesdirect"
)

func testMapping() *schedulesdirect.Mapping {
	return &schedulesdirect.Mapping{
		Map: []schedulesdirect.ChannelMap{
			{StationID: "10021", Channel: "002"},
			{StationID: "10035", VirtualChannel: "4.1"},
			{StationID: "99999", Channel: "099"},
			{StationID: "11223", LogicalChannelNumber: "101"},
		},
		Stations: []schedulesdirect.Station{
			{
				StationID:         "10021",
				Name:              "AMC",
				CallSign:          "AMC",
				BroadcastLanguage: []string{"en"},
				StationLogo:       []schedulesdirect.StationLogo{{URL: "https://example.com/amc.png"}},
				Broadcaster:       &schedulesdirect.Broadcaster{City: "New York", State: "NY", Country: "USA"},
			},
			{
				StationID:         "10035",
				Name:              "Home Shopping Network",
				CallSign:          "HSN",
				BroadcastLanguage: []string{"EN", "es"},
			},
			{
				StationID:         "11223",
				Name:              "Canal Uno",
				CallSign:          "UNO",
				BroadcastLanguage: []string{"es"},
				IsCommercialFree:  true,
			},
		},
		Metadata: schedulesdirect.MapMetadata{Lineup: "USA-NY67791-X", Transport: "Cable"},
	}
}

func TestChannels(t *testing.T) {
	channels := Channels(testMapping())

	require.Len(t, channels, 3)
	assert.Equal(t, "002", channels[0].Channel)
	assert.Equal(t, "4.1", channels[1].Channel)
	assert.Equal(t, "101", channels[2].Channel)
	for _, ch := range channels {
		assert.Equal(t, "USA-NY67791-X", ch.Lineup)
		assert.Equal(t, "Cable", ch.Transport)
	}

	assert.Nil(t, Channels(nil))
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name        string
		expression  string
		wantErr     bool
		errContains string
	}{
		{
			name:       "valid expression",
			expression: `hasLanguage("en")`,
		},
		{
			name:        "empty expression",
			expression:  "  ",
			wantErr:     true,
			errContains: "empty expression",
		},
		{
			name:       "invalid syntax",
			expression: `hasLanguage("unclosed`,
			wantErr:    true,
		},
		{
			name:       "unknown identifier",
			expression: `Genre == "drama"`,
			wantErr:    true,
		},
		{
			name:       "non boolean result",
			expression: `Name`,
			wantErr:    true,
		},
		{
			name:       "complex expression",
			expression: `Transport == "Cable" and hasLanguage("en") and not (lower(Name) contains "shopping")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile(tt.expression)
			if tt.wantErr {
				require.Error(t, err)
				var compErr *CompilationError
				assert.ErrorAs(t, err, &compErr)
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expression, f.String())
		})
	}
}

func TestApply(t *testing.T) {
	channels := Channels(testMapping())

	tests := []struct {
		name       string
		expression string
		want       []string
	}{
		{name: "language case insensitive", expression: `hasLanguage("en")`, want: []string{"10021", "10035"}},
		{name: "exclude shopping", expression: `not (lower(Name) contains "shopping")`, want: []string{"10021", "11223"}},
		{name: "commercial free", expression: `IsCommercialFree`, want: []string{"11223"}},
		{name: "broadcaster fields", expression: `City == "New York" and HasLogo`, want: []string{"10021"}},
		{name: "channel membership", expression: `Channel in ["002", "101"]`, want: []string{"10021", "11223"}},
		{name: "nothing", expression: `CallSign == "NONE"`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile(tt.expression)
			require.NoError(t, err)

			matched, err := f.Apply(channels)
			require.NoError(t, err)

			var ids []string
			for _, ch := range matched {
				ids = append(ids, ch.Station.StationID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestCompilationError(t *testing.T) {
	err := &CompilationError{Expression: "x ==", Reason: "unexpected token", Position: 4}
	assert.Equal(t, "compilation error at position 4 in 'x ==': unexpected token", err.Error())

	err = &CompilationError{Expression: "", Reason: "empty expression", Position: -1}
	assert.Equal(t, "compilation error in '': empty expression", err.Error())
}
