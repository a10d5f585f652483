package profile

// Builtin returns a registry holding the stock Klipper MCU profiles.
func Builtin() *Registry {
	r, err := NewRegistry(
		Profile{
			Name: "stm32g0b1xx",
			Fields: []Field{
				{Key: "MCU", Value: String("stm32g0b1xx")},
				{Key: "CLOCK_FREQ", Value: Int(64000000)},
				{Key: "RESERVE_PINS_USB", Value: String("PA11,PA12")},
			},
		},
		Profile{
			Name: "stm32f042x6",
			Fields: []Field{
				{Key: "MCU", Value: String("stm32f042x6")},
				{Key: "CLOCK_FREQ", Value: Int(48000000)},
				{Key: "RESERVE_PINS_USB", Value: String("PA11,PA12")},
			},
		},
	)
	if err != nil {
		panic(err)
	}
	return r
}
