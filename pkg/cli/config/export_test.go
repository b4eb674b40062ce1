package config

// ApplyFile exposes config file decoding without a cli.Command
func ApplyFile(data []byte, isSet func(string) bool, targets ...FileTarget) error {
	return apply(data, isSet, targets...)
}
