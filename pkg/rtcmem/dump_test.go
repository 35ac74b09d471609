package rtcmem

import "testing"

func collectRows(d *Dumper) []string {
	var rows []string
	for {
		row, ok := d.Next()
		if !ok {
			return rows
		}
		rows = append(rows, row)
	}
}

func TestDumperRowsAndWrap(t *testing.T) {
	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(i)
	}

	d := NewDumper(data, 0)
	rows := collectRows(d)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0] != "0000  00 01 02 03 04 05 06 07 08 09 0a 0b 0c 0d 0e 0f" {
		t.Fatalf("unexpected first row: %q", rows[0])
	}
	if rows[2] != "0020  20 21 22 23 24 25 26 27" {
		t.Fatalf("unexpected last row: %q", rows[2])
	}

	if _, ok := d.Next(); ok {
		t.Fatal("Next returned a row after exhaustion")
	}
}

func TestDumperResetRestarts(t *testing.T) {
	data := []byte{0xde, 0xad, 0xbe, 0xef}
	d := NewDumper(data, 32)

	first := collectRows(d)
	d.Reset()
	second := collectRows(d)

	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Fatalf("Reset did not restart the sequence: %v vs %v", first, second)
	}
	if first[0] != "0020  de ad be ef" {
		t.Fatalf("unexpected row: %q", first[0])
	}
}

func TestDumperEmptyRange(t *testing.T) {
	d := NewDumper(nil, 0)
	if _, ok := d.Next(); ok {
		t.Fatal("Next on empty range returned a row")
	}
}

func TestDumpRecordCoversWholeRecord(t *testing.T) {
	rec := newTestRecord(t)
	rec.SetChannel(6)
	rec.MakeValid()

	rows := collectRows(DumpRecord(rec))
	want := (RecordBytes + DumpWidth - 1) / DumpWidth
	if len(rows) != want {
		t.Fatalf("got %d rows, want %d", len(rows), want)
	}
}
