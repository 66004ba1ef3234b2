package xmlbody

import "testing"

var descriptionTests = []struct {
	name string
	xml  string
	want string
}{
	{
		name: "message nested under Error element",
		xml:  `<Response><Error><Message>access denied</Message></Error></Response>`,
		want: "access denied",
	},
	{
		name: "message directly under document element",
		xml:  `<Fault><message>upstream exploded</message></Fault>`,
		want: "upstream exploded",
	},
	{
		name: "descends through generic containers",
		xml:  `<Envelope><body><Error><detail>quota exceeded</detail></Error></body></Envelope>`,
		want: "quota exceeded",
	},
	{
		name: "malformed xml is swallowed",
		xml:  `<Response><Error>unclosed`,
		want: "",
	},
	{
		name: "empty input",
		xml:  "",
		want: "",
	},
	{
		name: "not xml at all",
		xml:  `{"message":"json, not xml"}`,
		want: "",
	},
	{
		name: "no message-bearing element",
		xml:  `<Response><Code>E42</Code></Response>`,
		want: "",
	},
	{
		name: "scalar document element yields nothing",
		xml:  `<Error>just text</Error>`,
		want: "",
	},
}

func TestDescription(t *testing.T) {
	t.Parallel()

	for _, tc := range descriptionTests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := Description(tc.xml)
			if got != tc.want {
				t.Fatalf("Description() = %q, want %q", got, tc.want)
			}
		})
	}
}
