package hp_v1910

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/switchcollectorpro/switchcollectorpro/addone/interact"
)

func TestRegisteredWithUnlock(t *testing.T) {
	p := interact.Get("hp_v1910")
	assert.Equal(t, "hp_v1910", p.Name())
	d := p.Defaults()
	assert.Equal(t, "_cmdline-mode on", d.UnlockCommand)
	assert.Equal(t, defaultUnlockSecret, d.UnlockSecret)
	assert.Equal(t, []string{">"}, d.CommandPromptSuffixes)
}

func TestTransformKeepsCommands(t *testing.T) {
	out := (&Plugin{}).TransformCommands(interact.CommandTransformInput{Commands: []string{"display arp"}})
	assert.Equal(t, []string{"display arp"}, out.Commands)
}
