package alias

import (
	"testing"
)

func testConfig() Config {
	return Config{
		Cities: []CityConfig{
			{Name: "北京", Stations: []string{"北京", "北京西", "北京南"}},
			{Name: "上海", Stations: []string{"上海", "上海虹桥"}},
			{Name: "呼和浩特", Stations: []string{"呼和浩特", "呼和浩特东"}, Aliases: []string{"呼市"}},
			{Name: "乌鲁木齐", Stations: []string{"乌鲁木齐"}, Aliases: []string{"乌市"}},
		},
		Heuristics: []Rule{
			{City: "呼和浩特", ContainsAll: []string{"呼和"}},
			{City: "乌鲁木齐", ContainsAll: []string{"乌", "鲁"}},
		},
	}
}

func TestResolveCanonical(t *testing.T) {
	table, err := FromConfig(testConfig())
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	city, ok := table.Resolve("北京")
	if !ok || city != "北京" {
		t.Errorf("Expected 北京, got %q (ok=%v)", city, ok)
	}
}

func TestResolveSuffixVariants(t *testing.T) {
	table, err := FromConfig(testConfig())
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	cases := map[string]string{
		"北京站":   "北京",
		"北京市":   "北京",
		"呼和浩特站": "呼和浩特",
		"呼和浩特市": "呼和浩特",
		"呼市":    "呼和浩特",
	}
	for input, want := range cases {
		city, ok := table.Resolve(input)
		if !ok || city != want {
			t.Errorf("Resolve(%q): expected %q, got %q (ok=%v)", input, want, city, ok)
		}
	}
}

func TestResolveTruncatedForm(t *testing.T) {
	table, err := FromConfig(testConfig())
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	// Two-character truncation of a long name must resolve to the same
	// city as the full canonical name.
	short, ok := table.Resolve("呼和")
	if !ok {
		t.Fatal("Expected 呼和 to resolve")
	}
	full, ok := table.Resolve("呼和浩特")
	if !ok {
		t.Fatal("Expected 呼和浩特 to resolve")
	}
	if short != full {
		t.Errorf("Truncated form resolved to %q, full name to %q", short, full)
	}
}

func TestResolveHeuristicRules(t *testing.T) {
	table, err := FromConfig(testConfig())
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	// Mangled rendering with a qualifier character inserted; only the
	// contains_all rule can catch this.
	city, ok := table.Resolve("乌鲁木齐南郊")
	if !ok || city != "乌鲁木齐" {
		t.Errorf("Expected 乌鲁木齐, got %q (ok=%v)", city, ok)
	}
}

func TestResolveUnknown(t *testing.T) {
	table, err := FromConfig(testConfig())
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	if city, ok := table.Resolve("亚特兰蒂斯"); ok {
		t.Errorf("Expected no match, got %q", city)
	}
	if _, ok := table.Resolve(""); ok {
		t.Error("Empty input must not resolve")
	}
}

func TestStationsOf(t *testing.T) {
	table, err := FromConfig(testConfig())
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	stations, err := table.StationsOf("北京")
	if err != nil {
		t.Fatalf("StationsOf failed: %v", err)
	}
	if len(stations) != 3 {
		t.Errorf("Expected 3 stations, got %d", len(stations))
	}

	if _, err := table.StationsOf("不存在"); err != ErrCityNotFound {
		t.Errorf("Expected ErrCityNotFound, got %v", err)
	}
}

func TestResolveStation(t *testing.T) {
	table, err := FromConfig(testConfig())
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	station, ok := table.ResolveStation("北京西")
	if !ok || station != "北京西" {
		t.Errorf("Expected 北京西, got %q (ok=%v)", station, ok)
	}

	// Suffix form maps back to the canonical station name.
	station, ok = table.ResolveStation("上海虹桥站")
	if !ok || station != "上海虹桥" {
		t.Errorf("Expected 上海虹桥, got %q (ok=%v)", station, ok)
	}

	if _, ok := table.ResolveStation("月球基地"); ok {
		t.Error("Unknown station must not resolve")
	}
}

func TestCityOfStation(t *testing.T) {
	table, err := FromConfig(testConfig())
	if err != nil {
		t.Fatalf("FromConfig failed: %v", err)
	}

	city, ok := table.CityOfStation("上海虹桥")
	if !ok || city != "上海" {
		t.Errorf("Expected 上海, got %q (ok=%v)", city, ok)
	}
}

func TestFromConfigRejectsSharedStation(t *testing.T) {
	cfg := Config{
		Cities: []CityConfig{
			{Name: "北京", Stations: []string{"北京"}},
			{Name: "上海", Stations: []string{"北京"}},
		},
	}
	if _, err := FromConfig(cfg); err == nil {
		t.Error("Expected error for station shared between cities")
	}
}

func TestFromConfigRejectsUnknownHeuristicCity(t *testing.T) {
	cfg := Config{
		Cities:     []CityConfig{{Name: "北京", Stations: []string{"北京"}}},
		Heuristics: []Rule{{City: "广州", ContainsAll: []string{"广"}}},
	}
	if _, err := FromConfig(cfg); err == nil {
		t.Error("Expected error for heuristic targeting unknown city")
	}
}

func TestDefaultTable(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	if len(table.Cities()) != 35 {
		t.Errorf("Expected 35 cities, got %d", len(table.Cities()))
	}
	if city, ok := table.Resolve("哈市"); !ok || city != "哈尔滨" {
		t.Errorf("Expected 哈尔滨, got %q (ok=%v)", city, ok)
	}
	if city, ok := table.CityOfStation("汉口"); !ok || city != "武汉" {
		t.Errorf("Expected 武汉 for 汉口, got %q (ok=%v)", city, ok)
	}
}
