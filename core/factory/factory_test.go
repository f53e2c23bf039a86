package factory

import "testing"

type fakeSink struct{ bufferSize int }

type fakeSinkConf struct {
	BufferSize int `json:"buffer_size"`
}

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry[*fakeSink]()
	err := reg.Register("fake", func(conf map[string]any) (*fakeSink, error) {
		var c fakeSinkConf
		if err := Decode(conf, &c); err != nil {
			return nil, err
		}
		return &fakeSink{bufferSize: c.BufferSize}, nil
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	sink, err := reg.Create(ModuleConfig{Type: "fake", Conf: map[string]any{"buffer_size": 64}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if sink.bufferSize != 64 {
		t.Fatalf("expected 64 got %d", sink.bufferSize)
	}
}

func TestRegistryErrors(t *testing.T) {
	reg := NewRegistry[int]()
	if err := reg.Register("x", func(map[string]any) (int, error) { return 1, nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", func(map[string]any) (int, error) { return 2, nil }); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("y", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "missing"}); err == nil {
		t.Fatal("expected unknown type error")
	}
}
