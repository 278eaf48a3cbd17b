package mqtt_bridge

// Topics derives every topic name from the site and the host name.
type Topics struct {
	Site string // "barlog"
	Host string
}

// State is the prefix events are published under: <site>/<host>.
func (t Topics) State() string { return t.Site + "/" + t.Host }

// Event returns the topic of one published event.
func (t Topics) Event(suffix string) string { return t.State() + "/" + suffix }

// Will is where the broker announces our disappearance.
func (t Topics) Will() string { return t.Event("heartbeat") }

func (t Topics) cmd(name string) string { return "cmd/" + t.Host + "/" + name }

func (t Topics) OTA() string          { return t.cmd("ota") }
func (t Topics) Lights() string       { return t.cmd("lights") }
func (t Topics) Sound() string        { return t.cmd("sound") }
func (t Topics) Calibrate() string    { return t.cmd("calibrate") }
func (t Topics) ExtCalibrate() string { return t.cmd("ext_calibrate") }
func (t Topics) Display() string      { return t.cmd("display") }
func (t Topics) Control() string      { return t.cmd("control") }

// NightMode is shared by every controller of the site.
func (t Topics) NightMode() string { return "cmd/" + t.Site + "/night_mode" }

// AirQuality carries CO2/IAQ measured by another node for this host.
func (t Topics) AirQuality() string { return "state/" + t.Host + "/air_quality" }
