package config

import (
	"errors"
	"testing"

	"github.com/scrubline/scrubline/filesystem"
	"github.com/scrubline/scrubline/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("Should register every defined key", func() {
			So(len(Default), ShouldEqual, key.DefinedFieldsCount)
		})

		Convey("Should default to a bounded network retry policy", func() {
			_ = Setup()
			So(viper.GetInt(key.StreamRetryMaxAttempts), ShouldEqual, 3)
			So(viper.GetInt(key.StreamRetryBaseDelay), ShouldEqual, 1000)
			So(viper.GetInt(key.StreamRetryMaxDelay), ShouldEqual, 8000)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("stream.retry.max_attempts")
			So(result, ShouldEqual, "stream_retry_max_attempts")
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given a registered field", t, func() {
		field := Default[key.PlayerVolume]

		Convey("Env should be prefixed with the application name", func() {
			So(field.Env(), ShouldEqual, "SCRUBLINE_PLAYER_VOLUME")
		})

		Convey("Pretty should mention the key", func() {
			So(field.Pretty(), ShouldContainSubstring, key.PlayerVolume)
		})
	})
}

func TestParse(t *testing.T) {
	Convey("Given command line values", t, func() {
		Convey("An int key should be converted and range checked", func() {
			v, err := Parse(key.PlayerVolume, []string{"80"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 80)

			_, err = Parse(key.PlayerVolume, []string{"120"})
			So(err, ShouldNotBeNil)

			_, err = Parse(key.StreamRetryMaxAttempts, []string{"three"})
			So(err, ShouldNotBeNil)
		})

		Convey("The start level should accept -1 for automatic", func() {
			v, err := Parse(key.StreamStartLevel, []string{"-1"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, -1)
		})

		Convey("A bool key should accept strconv booleans", func() {
			v, err := Parse(key.PlayerFullscreen, []string{"true"})
			So(err, ShouldBeNil)
			So(v, ShouldEqual, true)
		})

		Convey("A string key with choices should reject anything else", func() {
			_, err := Parse(key.IconsVariant, []string{"nerd"})
			So(err, ShouldBeNil)

			_, err = Parse(key.IconsVariant, []string{"sparkles"})
			So(err, ShouldNotBeNil)

			_, err = Parse(key.LogsLevel, []string{"verbose"})
			So(err, ShouldNotBeNil)
		})

		Convey("A list key should keep every word", func() {
			v, err := Parse(key.PlayerArgs, []string{"--mute=yes", "--no-border"})
			So(err, ShouldBeNil)
			So(v, ShouldResemble, []string{"--mute=yes", "--no-border"})
		})

		Convey("An unknown key should wrap ErrUnknownKey", func() {
			_, err := Parse("player.colour", []string{"red"})
			So(errors.Is(err, ErrUnknownKey), ShouldBeTrue)
		})

		Convey("A missing value should be an error", func() {
			_, err := Parse(key.PlayerPath, nil)
			So(err, ShouldNotBeNil)
		})
	})
}
