// Package config loads a types.Config for the reference CLI host from
// a file plus CLI flags, via viper/mapstructure, matching the teacher's
// own node-command config loading (cobra flags bound into viper, then
// decoded into a mapstructure-tagged struct).
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/psyche-run/coordinator/common/types"
)

// Defaults mirrors a small, conservative run: enough to exercise every
// phase without a real compute fleet behind it.
func Defaults() types.Config {
	return types.Config{
		MinClients:                  2,
		WarmupTime:                  30,
		CooldownTime:                30,
		MaxRoundTrainTime:           300,
		RoundWitnessTime:            15,
		RoundsPerEpoch:              8,
		TotalSteps:                  1000,
		WitnessNodes:                3,
		VerificationPercent:         20,
		WitnessQuorum:               2,
		GlobalBatchSizeStart:        8,
		GlobalBatchSizeEnd:          64,
		GlobalBatchSizeWarmupTokens: 1 << 20,
		MaxSeqLen:                   2048,
		BloomSizeBits:               1 << 20,
		BloomHashCount:              7,
		MaxInactivityRounds:         4,
	}
}

// BindFlags registers every Config field as a pflag on fs, so the
// reference CLI can override the loaded file per-invocation (mirrors
// hare3's own flag-to-viper-key binding in its node command).
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	d := Defaults()
	fs.Uint32("min-clients", d.MinClients, "minimum active clients required to leave WaitingForMembers")
	fs.Uint64("warmup-time", d.WarmupTime, "seconds spent in Warmup before the first round")
	fs.Uint64("cooldown-time", d.CooldownTime, "seconds spent in Cooldown between epochs")
	fs.Uint64("max-round-train-time", d.MaxRoundTrainTime, "seconds before a RoundTrain round times out")
	fs.Uint64("round-witness-time", d.RoundWitnessTime, "seconds a round spends accumulating witnesses before closing")
	fs.Uint32("rounds-per-epoch", d.RoundsPerEpoch, "rounds per epoch before Cooldown")
	fs.Uint64("total-steps", d.TotalSteps, "total steps before the run terminates")
	fs.Uint32("witness-nodes", d.WitnessNodes, "committee witness seats per round")
	fs.Uint8("verification-percent", d.VerificationPercent, "percent of active clients drawn as verifiers")
	fs.Uint32("witness-quorum", d.WitnessQuorum, "accepted witnesses required to close a round on the fast path")
	fs.Uint64("global-batch-size-start", d.GlobalBatchSizeStart, "global batch size at step 0")
	fs.Uint64("global-batch-size-end", d.GlobalBatchSizeEnd, "global batch size after warmup")
	fs.Uint64("global-batch-size-warmup-tokens", d.GlobalBatchSizeWarmupTokens, "token budget spanned by the batch-size warmup")
	fs.Uint64("max-seq-len", d.MaxSeqLen, "tokens per training sequence")
	fs.Uint32("bloom-size-bits", d.BloomSizeBits, "Bloom filter bit-array size")
	fs.Uint32("bloom-hash-count", d.BloomHashCount, "Bloom filter hash lane count")
	fs.Uint32("max-inactivity-rounds", d.MaxInactivityRounds, "consecutive unhealthy rounds before eviction")
	return v.BindPFlags(fs)
}

// Load reads a config file (if configPath is non-empty) merged with any
// previously-bound flags/env into a validated types.Config.
func Load(v *viper.Viper, configPath string) (types.Config, error) {
	v.SetEnvPrefix("PSYCHE_COORDINATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return types.Config{}, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, err
	}
	return cfg, nil
}
