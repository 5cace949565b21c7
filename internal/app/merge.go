package app

import "dario.cat/mergo"

func merge(base, override Config) (Config, error) {
	err := mergo.Merge(&base, override, mergo.WithOverride)
	return base, err
}
