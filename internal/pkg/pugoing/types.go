package pugoing

// DeviceKind is the recognized set of dpanel device types. Everything the
// vendor may add later falls into KindUnknown rather than a silent default.
type DeviceKind int

const (
	KindUnknown DeviceKind = iota
	KindLamp
	KindLampRGBCW
	KindVRV
	KindCurtain
	KindBreaker
	KindButler
	KindHumanSensor
)

// KindOf maps a vendor dpanel tag onto a DeviceKind.
func KindOf(dpanel string) DeviceKind {
	switch dpanel {
	case "Lamp", "LampBri":
		return KindLamp
	case "LampRGBCW":
		return KindLampRGBCW
	case "VRV":
		return KindVRV
	case "CurtainPG", "Curtain", "Curtain1":
		return KindCurtain
	case "Breaker":
		return KindBreaker
	case "IntelligentButler":
		return KindButler
	case "HumanSensor":
		return KindHumanSensor
	default:
		return KindUnknown
	}
}

func (k DeviceKind) String() string {
	switch k {
	case KindLamp:
		return "Lamp"
	case KindLampRGBCW:
		return "LampRGBCW"
	case KindVRV:
		return "VRV"
	case KindCurtain:
		return "Curtain"
	case KindBreaker:
		return "Breaker"
	case KindButler:
		return "IntelligentButler"
	case KindHumanSensor:
		return "HumanSensor"
	default:
		return "Unknown"
	}
}

// Dkey is a vendor command key for the plataction endpoint.
type Dkey string

func (k Dkey) String() string { return string(k) }

const (
	LampOpen  Dkey = "LAMP_OPEN"
	LampClose Dkey = "LAMP_CLOSE"
	LampBri   Dkey = "LAMP_BRI"
	LampCCT   Dkey = "LAMP_CCT"
	LampRGB   Dkey = "LAMP_RGB"

	CurtainOpen  Dkey = "CL_OPEN"
	CurtainPause Dkey = "CL_PAUSE"
	CurtainClose Dkey = "CL_CLOSE"
	CurtainPos   Dkey = "CL_POS"

	VRVOpen     Dkey = "VRV_OPEN"
	VRVClose    Dkey = "VRV_CLOSE"
	VRVModeCool Dkey = "VRV_MCOLD"
	VRVModeHeat Dkey = "VRV_MHOT"
	VRVModeDry  Dkey = "VRV_MDRY"
	VRVModeFan  Dkey = "VRV_MWIND"
	VRVModeAuto Dkey = "VRV_MAUTO"
	VRVFanHigh  Dkey = "VRV_WSH"
	VRVFanMed   Dkey = "VRV_WSM"
	VRVFanLow   Dkey = "VRV_WSL"

	BreakerOpen  Dkey = "DLQ_OPEN"
	BreakerClose Dkey = "DLQ_CLOSE"
)

// vrvTemperatureKeyPrefix is string-concatenated with the integer target
// temperature, e.g. VRV_T24.
const vrvTemperatureKeyPrefix = "VRV_T"
