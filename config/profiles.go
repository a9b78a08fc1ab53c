package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Engine kinds for a site profile.
const (
	EngineBrowser = "browser"
	EngineStatic  = "static"
)

// Source website tags attached to persisted listings.
const (
	SourceRealtorCa   = "realtor.ca"
	SourcePoint2Homes = "point2homes.com"
)

// Duration is a time.Duration that unmarshals from YAML strings like "60s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("profiles: invalid duration %q: %w", s, err)
	}
	*d = Duration(td)
	return nil
}

// Std returns the standard library representation.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Wait strategies for a navigation step.
const (
	WaitNetworkIdle  = "networkidle"
	WaitSelectorGone = "selectorgone"
	WaitSleep        = "sleep"
)

// NavStep is one entry of a profile's navigation sequence. A step with an
// empty URL performs no navigation and only applies its wait strategy to the
// already-loaded page.
type NavStep struct {
	URL          string   `yaml:"url"`
	Wait         string   `yaml:"wait"`
	WaitSelector string   `yaml:"wait_selector"`
	Timeout      Duration `yaml:"timeout"`
	SettleDelay  Duration `yaml:"settle_delay"`
}

// FieldPatterns maps listing fields to the sub-element selectors probed inside
// each matched card. Empty patterns yield empty raw fields, never an error.
type FieldPatterns struct {
	Title   string `yaml:"title"`
	Price   string `yaml:"price"`
	Address string `yaml:"address"`
	Details string `yaml:"details"`
	Beds    string `yaml:"beds"`
	Baths   string `yaml:"baths"`
}

// SiteProfile bundles everything needed to scrape one target site: how to get
// to the listings page, which card selectors to try, and how to read fields
// out of a card. Profiles are data so a markup change on a target site means
// editing a profile, not the navigation or orchestration code.
type SiteProfile struct {
	Name            string        `yaml:"name"`
	Source          string        `yaml:"source"`
	Engine          string        `yaml:"engine"`
	URL             string        `yaml:"url"`
	Steps           []NavStep     `yaml:"steps"`
	CardSelectors   []string      `yaml:"card_selectors"`
	Fields          FieldPatterns `yaml:"fields"`
	SelectorTimeout Duration      `yaml:"selector_timeout"`
}

const (
	defaultStepTimeout     = Duration(60 * time.Second)
	defaultSelectorTimeout = Duration(10 * time.Second)
	defaultSettleDelay     = Duration(3 * time.Second)
)

// DefaultProfiles returns the built-in scraping targets.
func DefaultProfiles() []SiteProfile {
	return []SiteProfile{
		{
			Name:   "realtor-ca",
			Source: SourceRealtorCa,
			Engine: EngineBrowser,
			Steps: []NavStep{
				{
					URL:         "https://www.realtor.ca",
					Wait:        WaitNetworkIdle,
					Timeout:     defaultStepTimeout,
					SettleDelay: defaultSettleDelay,
				},
				{
					URL: "https://www.realtor.ca/map#view=list&Sort=6-D" +
						"&GeoIds=g30_f2m5h95s&Type=0&ZoomLevel=11" +
						"&LatitudeMax=43.85654&LongitudeMax=-79.18555" +
						"&LatitudeMin=43.58158&LongitudeMin=-79.63546" +
						"&PropertyTypeGroupID=1",
					Wait:    WaitNetworkIdle,
					Timeout: defaultStepTimeout,
				},
				{
					Wait:         WaitSelectorGone,
					WaitSelector: ".loading-overlay",
					Timeout:      defaultStepTimeout,
				},
			},
			CardSelectors: []string{
				".cardCon",
				".listingCard",
				`[data-testid="listing-card"]`,
				".property-card",
				"#listingContainer .card",
			},
			Fields: FieldPatterns{
				Title:   `[class*="Title"]`,
				Price:   `[class*="Price"]`,
				Address: `[class*="Address"]`,
				Details: `[class*="Details"]`,
			},
			SelectorTimeout: defaultSelectorTimeout,
		},
		{
			Name:   "point2homes",
			Source: SourcePoint2Homes,
			Engine: EngineStatic,
			URL:    "https://www.point2homes.com/CA/Real-Estate-Listings/ON.html",
			CardSelectors: []string{
				".item-wrap",
			},
			Fields: FieldPatterns{
				Title:   ".item-title",
				Price:   ".item-price",
				Address: ".item-address",
				Beds:    ".item-beds",
				Baths:   ".item-baths",
			},
			SelectorTimeout: defaultSelectorTimeout,
		},
	}
}

// LoadProfiles returns the site profiles to scrape. With an empty path the
// built-in defaults are used; otherwise the YAML file at path replaces them.
func LoadProfiles(path string) ([]SiteProfile, error) {
	if path == "" {
		return DefaultProfiles(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profiles: read %q: %w", path, err)
	}

	var doc struct {
		Profiles []SiteProfile `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("profiles: parse %q: %w", path, err)
	}
	if len(doc.Profiles) == 0 {
		return nil, fmt.Errorf("profiles: %q defines no profiles", path)
	}

	for i := range doc.Profiles {
		applyProfileDefaults(&doc.Profiles[i])
		if err := validateProfile(&doc.Profiles[i]); err != nil {
			return nil, err
		}
	}
	return doc.Profiles, nil
}

func applyProfileDefaults(p *SiteProfile) {
	if p.Engine == "" {
		p.Engine = EngineBrowser
	}
	if p.SelectorTimeout == 0 {
		p.SelectorTimeout = defaultSelectorTimeout
	}
	for i := range p.Steps {
		if p.Steps[i].Timeout == 0 {
			p.Steps[i].Timeout = defaultStepTimeout
		}
	}
}

func validateProfile(p *SiteProfile) error {
	if p.Name == "" {
		return fmt.Errorf("profiles: profile with empty name")
	}
	if p.Source == "" {
		return fmt.Errorf("profiles: %s: source tag is required", p.Name)
	}
	if len(p.CardSelectors) == 0 {
		return fmt.Errorf("profiles: %s: at least one card selector is required", p.Name)
	}
	switch p.Engine {
	case EngineBrowser:
		if len(p.Steps) == 0 {
			return fmt.Errorf("profiles: %s: browser profile needs navigation steps", p.Name)
		}
	case EngineStatic:
		if p.URL == "" {
			return fmt.Errorf("profiles: %s: static profile needs a url", p.Name)
		}
	default:
		return fmt.Errorf("profiles: %s: unknown engine %q", p.Name, p.Engine)
	}
	return nil
}
