package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractUsername(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantUser  string
		wantScope Scope
		wantErr   bool
	}{
		{name: "global prefixed", input: "g_alice_v100", wantUser: "alice", wantScope: ScopeGlobal},
		{name: "local prefixed", input: "l_bob", wantUser: "bob", wantScope: ScopeLocal},
		{name: "bare vlan form", input: "alice_v100", wantUser: "alice", wantScope: ScopeUnspecified},
		{name: "compound hyphenated", input: "alice-mgmt-2", wantUser: "alice", wantScope: ScopeUnspecified},
		{name: "uppercase is normalized", input: "G_ALICE_V100", wantUser: "alice", wantScope: ScopeGlobal},
		{name: "empty", input: "", wantErr: true},
		{name: "no convention matches", input: "445_legacy", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, scope, err := ExtractUsername(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoUsername)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, user)
			assert.Equal(t, tt.wantScope, scope)
		})
	}
}

func TestGenerateSignaturePortMode(t *testing.T) {
	sig, err := GenerateSignature(&ServiceInstance{Name: "g_alice_v100", Type: PortMode})
	require.NoError(t, err)
	assert.Equal(t, "portmode:alice", sig)

	_, err = GenerateSignature(&ServiceInstance{Name: "445_legacy", Type: PortMode})
	assert.ErrorIs(t, err, ErrNoUsername)
}

func TestGenerateSignatureLocalScope(t *testing.T) {
	sig, err := GenerateSignature(&ServiceInstance{
		Name:   "l_bob",
		Type:   SingleTagged,
		VLANID: intp(100),
	})
	require.NoError(t, err)
	assert.Equal(t, "local:bob:vlan:100", sig)
}

func TestGenerateSignatureGlobalWithUsername(t *testing.T) {
	// No declared VLAN: identity comes from a device-sourced interface.
	sig, err := GenerateSignature(&ServiceInstance{
		Name: "g_alice_v100",
		Type: SingleTagged,
		Interfaces: []InterfaceTagConfig{
			{Name: "et-0/0/1.100", VLANID: intp(100), FromDeviceConfig: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "global:alice:vlan:100", sig)
}

func TestGenerateSignatureGlobalWithoutUsername(t *testing.T) {
	// A service whose name matches no convention still gets a signature
	// when an authoritative VLAN exists.
	sig, err := GenerateSignature(&ServiceInstance{
		Name:      "445_legacy",
		Type:      DoubleTagged,
		OuterVLAN: intp(445),
	})
	require.NoError(t, err)
	assert.Equal(t, "global:vlan:445", sig)
}

func TestGenerateSignatureQinQUsesOuterTag(t *testing.T) {
	// The outer tag wins over the declared primary VLAN for QinQ types.
	sig, err := GenerateSignature(&ServiceInstance{
		Name:      "g_alice_v100",
		Type:      QinQSingleBD,
		VLANID:    intp(100),
		OuterVLAN: intp(445),
	})
	require.NoError(t, err)
	assert.Equal(t, "global:alice:vlan:445", sig)
}

func TestGenerateSignatureRange(t *testing.T) {
	sig, err := GenerateSignature(&ServiceInstance{
		Name: "alice_v100",
		Type: SingleTaggedRange,
		Interfaces: []InterfaceTagConfig{
			{Name: "et-0/0/1", Range: &VLANRange{Start: 100, End: 200}, FromDeviceConfig: true},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice:range:100-200", sig)
}

func TestGenerateSignatureListUnion(t *testing.T) {
	sig, err := GenerateSignature(&ServiceInstance{
		Name: "g_alice_v100",
		Type: SingleTaggedList,
		Interfaces: []InterfaceTagConfig{
			{Name: "et-0/0/1", List: []int{300, 100}, FromDeviceConfig: true},
			{Name: "et-0/0/2", List: []int{200, 100}, FromDeviceConfig: true},
			// inferred record never contributes identity
			{Name: "et-0/0/3", List: []int{999}, FromDeviceConfig: false},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "alice:list:100_200_300", sig)
}

func TestGenerateSignatureFailClosed(t *testing.T) {
	_, err := GenerateSignature(&ServiceInstance{Name: "g_alice_v100", Type: Hybrid})
	assert.ErrorIs(t, err, ErrNoSignatureForm)

	_, err = GenerateSignature(&ServiceInstance{Name: "g_alice_v100", Type: EmptyBridgeDomain})
	assert.ErrorIs(t, err, ErrNoSignatureForm)

	// No VLAN anywhere: never invent one.
	_, err = GenerateSignature(&ServiceInstance{Name: "g_alice_v100", Type: SingleTagged})
	assert.ErrorIs(t, err, ErrNoAuthoritativeVLAN)

	// Inferred interface records are not authoritative.
	_, err = GenerateSignature(&ServiceInstance{
		Name: "g_alice_v100",
		Type: SingleTagged,
		Interfaces: []InterfaceTagConfig{
			{Name: "et-0/0/1.100", VLANID: intp(100), FromDeviceConfig: false},
		},
	})
	assert.ErrorIs(t, err, ErrNoAuthoritativeVLAN)
}

func TestGenerateSignatureStable(t *testing.T) {
	inst := &ServiceInstance{
		Name:      "g_alice_v100",
		Type:      QinQSingleBD,
		OuterVLAN: intp(445),
	}

	first, err := GenerateSignature(inst)
	require.NoError(t, err)
	second, err := GenerateSignature(inst)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
