package publisher

import (
	"testing"
	"time"
)

func TestParseSchedule(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    Spec
		wantErr bool
	}{
		{in: "0 9 * * *", want: Spec{Kind: SpecCron, Cron: "0 9 * * *"}},
		{in: "@hourly", want: Spec{Kind: SpecCron, Cron: "@hourly"}},
		{in: "cron:*/5 * * * *", want: Spec{Kind: SpecCron, Cron: "*/5 * * * *"}},
		{in: "09:00", want: Spec{Kind: SpecCron, Cron: "0 9 * * *"}},
		{in: "9:30", want: Spec{Kind: SpecCron, Cron: "30 9 * * *"}},
		{in: "30m", want: Spec{Kind: SpecInterval, Every: 30 * time.Minute}},
		{in: "2h30m", want: Spec{Kind: SpecInterval, Every: 2*time.Hour + 30*time.Minute}},
		{in: "every:45m", want: Spec{Kind: SpecInterval, Every: 45 * time.Minute}},
		{in: "", wantErr: true},
		{in: "25:00", wantErr: true},
		{in: "09:61", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "every:-5m", wantErr: true},
		{in: "cron:", wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSchedule(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseSchedule(%q) expected error, got %+v", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSchedule(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("ParseSchedule(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}
