package connection

import "strings"

// Entry is one item of the connection list as the registry renders it: the
// summary is display text of the form "host:port/database".
type Entry struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	DBType  string `json:"db_type"`
	Summary string `json:"summary"`
}

// DraftFromEntry reconstructs an edit draft from a rendered list entry. The
// summary only carries host, port and database; username, password and
// additional params are left blank, so an edit cannot round-trip the full
// stored connection.
func DraftFromEntry(e Entry) Draft {
	f := Fields{
		ID:     e.ID,
		Name:   strings.TrimSpace(e.Name),
		DBType: strings.TrimSpace(e.DBType),
	}

	summary := strings.TrimSpace(e.Summary)
	if strings.Contains(summary, "/") {
		parts := strings.Split(summary, "/")
		f.Database = strings.TrimSpace(parts[len(parts)-1])

		if strings.Contains(parts[0], ":") {
			hostPort := strings.Split(parts[0], ":")
			f.Host = strings.TrimSpace(hostPort[0])
			f.Port = strings.TrimSpace(hostPort[1])
		} else {
			f.Host = strings.TrimSpace(parts[0])
		}
	}

	return NewDraft(f)
}

// Remove returns entries without the one whose ID matches id, and whether an
// entry was removed.
func Remove(entries []Entry, id string) ([]Entry, bool) {
	for i, e := range entries {
		if e.ID == id {
			out := make([]Entry, 0, len(entries)-1)
			out = append(out, entries[:i]...)
			return append(out, entries[i+1:]...), true
		}
	}
	return entries, false
}

// Find returns the entry with the given id.
func Find(entries []Entry, id string) (Entry, bool) {
	for _, e := range entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}
