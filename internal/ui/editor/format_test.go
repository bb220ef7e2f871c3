package editor

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "clauses and commas",
			sql:  "select id, email from users where id = 1 and score > 10 order by id",
			want: "SELECT id,\n  email\nFROM users\nWHERE id = 1\n  AND score > 10\nORDER BY id",
		},
		{
			name: "join phrase stays on one line",
			sql:  "select cust.id from cust left outer join ord on ord.cust_id = cust.id",
			want: "SELECT cust.id\nFROM cust\n  LEFT OUTER JOIN ord ON ord.cust_id = cust.id",
		},
		{
			name: "commas in parentheses and between",
			sql:  "select fn(qty, price) from ord where qty between 1 and 5",
			want: "SELECT fn(qty, price)\nFROM ord\nWHERE qty BETWEEN 1 AND 5",
		},
		{
			name: "literals and comments untouched",
			sql:  "select 'where' -- and or\nfrom ord",
			want: "SELECT 'where' -- and or\nFROM ord",
		},
		{
			name: "blank string literal",
			sql:  "select ' ' from ord",
			want: "SELECT ' '\nFROM ord",
		},
		{
			name: "statements",
			sql:  "select id from ord; select id from cust",
			want: "SELECT id\nFROM ord;\nSELECT id\nFROM cust",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.sql); got != tt.want {
				t.Errorf("Format() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestFormat_Idempotent(t *testing.T) {
	once := Format("select id, email from users u inner join ord on ord.uid = u.id where id = 1 or id = 2")
	if twice := Format(once); twice != once {
		t.Errorf("formatting twice changed the text:\n%s\n---\n%s", once, twice)
	}
}

func TestModel_Format(t *testing.T) {
	m := newEditor()
	if m.Format() {
		t.Fatal("an empty buffer has nothing to format")
	}

	m.SetValue("select id from ord")
	m.ResetModified()
	if !m.Format() {
		t.Fatal("expected the buffer to change")
	}
	if m.Value() != "SELECT id\nFROM ord" {
		t.Fatalf("Value() = %q", m.Value())
	}
	if !m.Modified() {
		t.Error("formatting marks the buffer modified")
	}
	if m.Format() {
		t.Error("formatted text is stable")
	}
}
