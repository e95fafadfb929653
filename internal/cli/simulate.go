package cli

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"healthchain/internal/vitals"
)

var (
	simulateHeartRate   int
	simulateSystolic    int
	simulateDiastolic   int
	simulateOxygen      int
	simulateTemperature float64
	simulateTempUnit    string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate-alert",
	Short: "Push a crafted reading through assessment and alerting",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateHeartRate <= 0 || simulateSystolic <= 0 || simulateOxygen <= 0 {
			return errors.New("--heart-rate, --systolic and --oxygen must be greater than 0")
		}

		reading := vitals.Reading{
			HeartRate:              simulateHeartRate,
			BloodPressureSystolic:  simulateSystolic,
			BloodPressureDiastolic: simulateDiastolic,
			OxygenSaturation:       simulateOxygen,
			Temperature:            decimal.NewFromFloat(simulateTemperature),
			TemperatureUnit:        vitals.TemperatureUnit(simulateTempUnit),
		}

		return getApp().SimulateAlert(cmd.Context(), reading)
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simulateHeartRate, "heart-rate", 120, "Heart rate in BPM")
	simulateCmd.Flags().IntVar(&simulateSystolic, "systolic", 150, "Systolic blood pressure in mmHg")
	simulateCmd.Flags().IntVar(&simulateDiastolic, "diastolic", 95, "Diastolic blood pressure in mmHg")
	simulateCmd.Flags().IntVar(&simulateOxygen, "oxygen", 90, "Oxygen saturation percentage")
	simulateCmd.Flags().Float64Var(&simulateTemperature, "temperature", 98.6, "Body temperature")
	simulateCmd.Flags().StringVar(&simulateTempUnit, "temp-unit", "F", "Temperature unit (F or C)")
}
