package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type fakeDriver struct {
	inputs   []string
	confirms []bool
	asked    []InputConfig
	infos    []string
	err      error
}

func (d *fakeDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	d.asked = append(d.asked, cfg)
	value := cfg.Default
	if len(d.inputs) > 0 {
		value, d.inputs = d.inputs[0], d.inputs[1:]
		if value == "" {
			value = cfg.Default
		}
	}
	if cfg.Validator != nil {
		if err := cfg.Validator(value); err != nil {
			return "", err
		}
	}
	return value, nil
}

func (d *fakeDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	if len(d.confirms) == 0 {
		return cfg.Default, nil
	}
	v := d.confirms[0]
	d.confirms = d.confirms[1:]
	return v, nil
}

func (d *fakeDriver) Info(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

func statusFixture() StatusReport {
	return StatusReport{
		File:      "census.xlsx",
		Current:   Values{Title: "Census"},
		Missing:   []string{"form_id", "version"},
		Suggested: Suggest("census"),
	}
}

func TestPrompterAcceptsDefaults(t *testing.T) {
	driver := &fakeDriver{}
	values, write, err := NewPrompter(driver).Ask(context.Background(), statusFixture())
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if !write {
		t.Fatalf("expected write confirmation")
	}
	if diff := cmp.Diff(Values{Title: "Census", ID: "census"}, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"census.xlsx is missing: form_id, version"}, driver.infos); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if len(driver.asked) != 2 {
		t.Fatalf("expected two input prompts, got %d", len(driver.asked))
	}
}

func TestPrompterLiteralVersion(t *testing.T) {
	driver := &fakeDriver{
		inputs:   []string{"Population Census", "pop_census", "2024.1"},
		confirms: []bool{false, true},
	}
	values, write, err := NewPrompter(driver).Ask(context.Background(), statusFixture())
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	want := Values{Title: "Population Census", ID: "pop_census", Version: "2024.1"}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
	if !write {
		t.Fatalf("expected write")
	}
}

func TestPrompterDeclineWrite(t *testing.T) {
	driver := &fakeDriver{confirms: []bool{true, false}}
	_, write, err := NewPrompter(driver).Ask(context.Background(), statusFixture())
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if write {
		t.Fatalf("expected write to be declined")
	}
}

func TestPrompterRejectsInvalidID(t *testing.T) {
	driver := &fakeDriver{inputs: []string{"", "1 bad id"}}
	if _, _, err := NewPrompter(driver).Ask(context.Background(), statusFixture()); err == nil {
		t.Fatalf("expected validation error for invalid id")
	}
}

func TestPrompterAborted(t *testing.T) {
	driver := &fakeDriver{err: ErrAborted}
	if _, _, err := NewPrompter(driver).Ask(context.Background(), statusFixture()); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
}
