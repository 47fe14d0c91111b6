package geo

import "strings"

// State is a US state (or DC) with the approximate geographic centre used as
// a patient's location when only the state is known.
type State struct {
	Code      string
	Name      string
	Latitude  float64
	Longitude float64
}

func (s State) Point() Point {
	return Point{Latitude: s.Latitude, Longitude: s.Longitude}
}

var states = []State{
	{"AL", "Alabama", 32.806671, -86.791130},
	{"AK", "Alaska", 61.370716, -152.404419},
	{"AZ", "Arizona", 33.729759, -111.431221},
	{"AR", "Arkansas", 34.969704, -92.373123},
	{"CA", "California", 36.116203, -119.681564},
	{"CO", "Colorado", 39.059811, -105.311104},
	{"CT", "Connecticut", 41.597782, -72.755371},
	{"DE", "Delaware", 39.318523, -75.507141},
	{"DC", "District of Columbia", 38.897438, -77.026817},
	{"FL", "Florida", 27.766279, -81.686783},
	{"GA", "Georgia", 33.040619, -83.643074},
	{"HI", "Hawaii", 21.094318, -157.498337},
	{"ID", "Idaho", 44.240459, -114.478828},
	{"IL", "Illinois", 40.349457, -88.986137},
	{"IN", "Indiana", 39.849426, -86.258278},
	{"IA", "Iowa", 42.011539, -93.210526},
	{"KS", "Kansas", 38.526600, -96.726486},
	{"KY", "Kentucky", 37.668140, -84.670067},
	{"LA", "Louisiana", 31.169546, -91.867805},
	{"ME", "Maine", 44.693947, -69.381927},
	{"MD", "Maryland", 39.063946, -76.802101},
	{"MA", "Massachusetts", 42.230171, -71.530106},
	{"MI", "Michigan", 43.326618, -84.536095},
	{"MN", "Minnesota", 45.694454, -93.900192},
	{"MS", "Mississippi", 32.741646, -89.678696},
	{"MO", "Missouri", 38.456085, -92.288368},
	{"MT", "Montana", 46.921925, -110.454353},
	{"NE", "Nebraska", 41.125370, -98.268082},
	{"NV", "Nevada", 38.313515, -117.055374},
	{"NH", "New Hampshire", 43.452492, -71.563896},
	{"NJ", "New Jersey", 40.298904, -74.521011},
	{"NM", "New Mexico", 34.840515, -106.248482},
	{"NY", "New York", 42.165726, -74.948051},
	{"NC", "North Carolina", 35.630066, -79.806419},
	{"ND", "North Dakota", 47.528912, -99.784012},
	{"OH", "Ohio", 40.388783, -82.764915},
	{"OK", "Oklahoma", 35.565342, -96.928917},
	{"OR", "Oregon", 44.572021, -122.070938},
	{"PA", "Pennsylvania", 40.590752, -77.209755},
	{"RI", "Rhode Island", 41.680893, -71.511780},
	{"SC", "South Carolina", 33.856892, -80.945007},
	{"SD", "South Dakota", 44.299782, -99.438828},
	{"TN", "Tennessee", 35.747845, -86.692345},
	{"TX", "Texas", 31.054487, -97.563461},
	{"UT", "Utah", 40.150032, -111.862434},
	{"VT", "Vermont", 44.045876, -72.710686},
	{"VA", "Virginia", 37.769337, -78.169968},
	{"WA", "Washington", 47.400902, -121.490494},
	{"WV", "West Virginia", 38.491226, -80.954453},
	{"WI", "Wisconsin", 44.268543, -89.616508},
	{"WY", "Wyoming", 42.755966, -107.302490},
}

var stateIndex = func() map[string]State {
	index := make(map[string]State, len(states)*2)
	for _, s := range states {
		index[s.Code] = s
		index[strings.ToUpper(s.Name)] = s
	}
	return index
}()

// LookupState resolves a two-letter code or full state name, ignoring case and
// surrounding whitespace.
func LookupState(value string) (State, bool) {
	key := strings.ToUpper(strings.Join(strings.Fields(value), " "))
	if key == "" {
		return State{}, false
	}
	s, ok := stateIndex[key]
	return s, ok
}

// States returns a copy of the table.
func States() []State {
	out := make([]State, len(states))
	copy(out, states)
	return out
}
