package config

import (
	"fmt"

	"github.com/spf13/viper"

	"liquidityEngine/internal/fixed"
	"liquidityEngine/internal/model"
)

// PoolSettings is the raw pool section of the config file. Amounts and
// rates stay strings until Build so they keep full precision.
type PoolSettings struct {
	ID                 string
	Type               string
	CommissionRate     string
	ImbalanceFee       string
	Whitelist          []string
	FirstAssetMinimum  string
	SecondAssetMinimum string
	Amp                AmpSettings
	Assets             []AssetSettings
	TotalShare         string
	Timestamp          string
}

// AmpSettings configures the StableSwap amplification ramp.
type AmpSettings struct {
	Initial   uint64
	Target    uint64
	StartRamp string
	StopRamp  string
}

// AssetSettings is one reserve of the pool.
type AssetSettings struct {
	Denom    string `mapstructure:"denom"`
	Decimals uint8  `mapstructure:"decimals"`
	Reserve  string `mapstructure:"reserve"`
}

func loadPoolSettings(v *viper.Viper) (PoolSettings, error) {
	var assets []AssetSettings
	if v.IsSet("pool.assets") {
		if err := v.UnmarshalKey("pool.assets", &assets); err != nil {
			return PoolSettings{}, fmt.Errorf("decode pool assets: %w", err)
		}
	}

	initial := v.GetUint64("pool.amp.initial")
	target := initial
	if v.IsSet("pool.amp.target") {
		target = v.GetUint64("pool.amp.target")
	}

	return PoolSettings{
		ID:                 v.GetString("pool.id"),
		Type:               v.GetString("pool.type"),
		CommissionRate:     v.GetString("pool.commission-rate"),
		ImbalanceFee:       v.GetString("pool.imbalance-fee"),
		Whitelist:          getStringSlice(v, "pool.whitelist"),
		FirstAssetMinimum:  v.GetString("pool.first-asset-minimum"),
		SecondAssetMinimum: v.GetString("pool.second-asset-minimum"),
		Amp: AmpSettings{
			Initial:   initial,
			Target:    target,
			StartRamp: v.GetString("pool.amp.start-ramp"),
			StopRamp:  v.GetString("pool.amp.stop-ramp"),
		},
		Assets:     assets,
		TotalShare: v.GetString("pool.total-share"),
		Timestamp:  v.GetString("pool.timestamp"),
	}, nil
}

// BuildConfig converts the settings into a validated pool config.
func (p PoolSettings) BuildConfig() (model.PoolConfig, error) {
	poolType, err := model.ParsePoolType(p.Type)
	if err != nil {
		return model.PoolConfig{}, err
	}
	commission, err := parseOptionalDecimal(p.CommissionRate)
	if err != nil {
		return model.PoolConfig{}, fmt.Errorf("commission rate: %w", err)
	}
	imbalanceFee, err := parseOptionalDecimal(p.ImbalanceFee)
	if err != nil {
		return model.PoolConfig{}, fmt.Errorf("imbalance fee: %w", err)
	}

	req := model.Requirements{Whitelist: p.Whitelist}
	if p.FirstAssetMinimum != "" {
		if req.FirstAssetMinimum, err = fixed.ParseUint(p.FirstAssetMinimum); err != nil {
			return model.PoolConfig{}, fmt.Errorf("first asset minimum: %w", err)
		}
	}
	if p.SecondAssetMinimum != "" {
		if req.SecondAssetMinimum, err = fixed.ParseUint(p.SecondAssetMinimum); err != nil {
			return model.PoolConfig{}, fmt.Errorf("second asset minimum: %w", err)
		}
	}

	start, err := ParseTimestamp(p.Amp.StartRamp)
	if err != nil {
		return model.PoolConfig{}, fmt.Errorf("amp start ramp: %w", err)
	}
	stop, err := ParseTimestamp(p.Amp.StopRamp)
	if err != nil {
		return model.PoolConfig{}, fmt.Errorf("amp stop ramp: %w", err)
	}

	cfg := model.PoolConfig{
		ID:             p.ID,
		Type:           poolType,
		CommissionRate: commission,
		ImbalanceFee:   imbalanceFee,
		Requirements:   req,
		Amp: model.AmpFactor{
			InitialAmp:  p.Amp.Initial,
			TargetAmp:   p.Amp.Target,
			StartRampTs: start,
			StopRampTs:  stop,
		},
	}
	if err := cfg.Validate(); err != nil {
		return model.PoolConfig{}, err
	}
	return cfg, nil
}

// BuildSnapshot converts the reserve settings into a snapshot.
func (p PoolSettings) BuildSnapshot() (model.PoolSnapshot, error) {
	snap := model.PoolSnapshot{
		Assets:   make([]model.Asset, 0, len(p.Assets)),
		Decimals: make([]uint8, 0, len(p.Assets)),
		Source:   "config",
	}
	for _, a := range p.Assets {
		reserve := a.Reserve
		if reserve == "" {
			reserve = "0"
		}
		amount, err := fixed.ParseUint(reserve)
		if err != nil {
			return model.PoolSnapshot{}, fmt.Errorf("reserve of %s: %w", a.Denom, err)
		}
		snap.Assets = append(snap.Assets, model.Asset{Denom: a.Denom, Amount: amount})
		snap.Decimals = append(snap.Decimals, a.Decimals)
	}

	total, err := fixed.ParseUint(p.TotalShare)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("total share: %w", err)
	}
	snap.TotalShare = total

	if snap.Timestamp, err = ParseTimestamp(p.Timestamp); err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("timestamp: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return model.PoolSnapshot{}, err
	}
	return snap, nil
}

func parseOptionalDecimal(input string) (fixed.Decimal, error) {
	if input == "" {
		return fixed.Zero(), nil
	}
	return fixed.Parse(input)
}
