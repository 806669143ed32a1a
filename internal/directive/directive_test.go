package directive

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingPinner struct {
	calls []string
}

func (r *recordingPinner) SetPinned(id string, pinned bool) bool {
	if pinned {
		r.calls = append(r.calls, "pin:"+id)
	} else {
		r.calls = append(r.calls, "unpin:"+id)
	}
	return true
}

func TestHandlePinDirective(t *testing.T) {
	p := &recordingPinner{}

	text, d := Handle("Done! [ACTION:PIN:184392]", p)

	assert.Equal(t, "Done!", text)
	assert.Equal(t, Directive{Kind: KindPin, Code: "PIN", Target: "184392"}, d)
	assert.Equal(t, []string{"pin:184392"}, p.calls)
}

func TestHandleWithoutDirective(t *testing.T) {
	p := &recordingPinner{}
	reply := "  The outage email came from Ops.  "

	text, d := Handle(reply, p)

	assert.Equal(t, reply, text)
	assert.False(t, d.Found())
	assert.Empty(t, p.calls)
}

func TestOnlyFirstDirectiveHonored(t *testing.T) {
	p := &recordingPinner{}

	text, d := Handle("Pinned both? [ACTION:PIN:a1] and [ACTION:PIN:b2]", p)

	assert.Equal(t, "a1", d.Target)
	assert.Equal(t, []string{"pin:a1"}, p.calls)
	assert.Equal(t, "Pinned both?  and [ACTION:PIN:b2]", text)
}

func TestUnknownKindIsStrippedWithoutMutation(t *testing.T) {
	p := &recordingPinner{}

	text, d := Handle("Archived it. [ACTION:ARCHIVE:77]", p)

	assert.Equal(t, "Archived it.", text)
	assert.Equal(t, KindUnknown, d.Kind)
	assert.Equal(t, "ARCHIVE", d.Code)
	assert.Equal(t, "77", d.Target)
	assert.Empty(t, p.calls)
}

func TestParseRejectsMalformedCodes(t *testing.T) {
	for _, reply := range []string{
		"ACTION:PIN:1",
		"[ACTION:pin:1]",
		"[ACTION:PIN:]",
		"(ACTION:PIN:1)",
	} {
		assert.False(t, Parse(reply).Found(), reply)
		assert.Equal(t, reply, Strip(reply), reply)
	}
}

func TestTargetRunsToClosingBracket(t *testing.T) {
	d := Parse("ok [ACTION:PIN:18c 9f-x:y]")
	assert.Equal(t, "18c 9f-x:y", d.Target)
}

func TestDirectiveInTheMiddle(t *testing.T) {
	assert.Equal(t, "Sure  done.", Strip("Sure [ACTION:PIN:1] done."))
}

func TestApplyNilPinner(t *testing.T) {
	assert.False(t, Apply(Directive{Kind: KindPin, Target: "1"}, nil))
}
