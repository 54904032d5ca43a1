package domain

import (
	"sort"
	"time"
)

// Dataset is the immutable in-memory reference table.
type Dataset struct {
	records []Record
	index   map[lookupKey]int // position of the first record for each tuple
}

// NewDataset indexes records by (state, district, commodity, day). Record
// dates are truncated to the day. The first record for a tuple wins.
func NewDataset(records []Record) *Dataset {
	d := &Dataset{
		records: make([]Record, len(records)),
		index:   make(map[lookupKey]int, len(records)),
	}
	for i, r := range records {
		r.Date = Day(r.Date)
		d.records[i] = r
		if _, dup := d.index[r.key()]; !dup {
			d.index[r.key()] = i
		}
	}
	return d
}

// Len returns the number of rows, duplicates included.
func (d *Dataset) Len() int { return len(d.records) }

// Lookup returns the record matching sel exactly. The boolean is false when
// nothing matches, which is an expected outcome rather than an error.
func (d *Dataset) Lookup(sel Selection) (Record, bool) {
	i, ok := d.index[sel.lookupKey()]
	if !ok {
		return Record{}, false
	}
	return d.records[i], true
}

// States lists the distinct states in first-appearance order.
func (d *Dataset) States() []string {
	return d.distinct(func(Record) bool { return true }, func(r Record) string { return r.State })
}

// Districts lists the distinct districts of a state in first-appearance order.
func (d *Dataset) Districts(state string) []string {
	return d.distinct(
		func(r Record) bool { return r.State == state },
		func(r Record) string { return r.District },
	)
}

// Commodities lists the distinct commodities recorded for a district of a state.
func (d *Dataset) Commodities(state, district string) []string {
	return d.distinct(
		func(r Record) bool { return r.State == state && r.District == district },
		func(r Record) string { return r.Commodity },
	)
}

// Dates lists the distinct stored days for a tuple in ascending order.
func (d *Dataset) Dates(state, district, commodity string) []time.Time {
	seen := make(map[time.Time]struct{})
	var out []time.Time
	for _, r := range d.records {
		if r.State != state || r.District != district || r.Commodity != commodity {
			continue
		}
		if _, ok := seen[r.Date]; ok {
			continue
		}
		seen[r.Date] = struct{}{}
		out = append(out, r.Date)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func (d *Dataset) distinct(keep func(Record) bool, field func(Record) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, r := range d.records {
		if !keep(r) {
			continue
		}
		v := field(r)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
