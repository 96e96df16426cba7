package filter

import (
	"github.com/s0up4200/sdgrab/schedulesdirect"
)

// Channel is a station as carried by one lineup: the station itself plus
// where it is tuned.
type Channel struct {
	Lineup    string
	Transport string
	Channel   string
	Station   schedulesdirect.Station
}

// Channels joins a lineup mapping's channel map with its station list.
// Map entries for stations missing from the list are skipped.
func Channels(m *schedulesdirect.Mapping) []Channel {
	if m == nil {
		return nil
	}

	stations := make(map[string]schedulesdirect.Station, len(m.Stations))
	for _, s := range m.Stations {
		stations[s.StationID] = s
	}

	channels := make([]Channel, 0, len(m.Map))
	for _, entry := range m.Map {
		station, ok := stations[entry.StationID]
		if !ok {
			continue
		}
		channels = append(channels, Channel{
			Lineup:    m.Metadata.Lineup,
			Transport: m.Metadata.Transport,
			Channel:   channelNumber(entry),
			Station:   station,
		})
	}
	return channels
}

func channelNumber(entry schedulesdirect.ChannelMap) string {
	switch {
	case entry.Channel != "":
		return entry.Channel
	case entry.VirtualChannel != "":
		return entry.VirtualChannel
	case entry.LogicalChannelNumber != "":
		return entry.LogicalChannelNumber
	default:
		return ""
	}
}
