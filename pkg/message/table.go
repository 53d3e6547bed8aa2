package message

import "time"

// Stable type identifiers. Never reuse or renumber a shipped identifier.
const (
	TypePostedTime   int32 = 1
	TypeTimeGap      int32 = 19
	TypeLapGap       int32 = -54815557
	TypeSpeedEntry   int32 = 63644252
	TypeComposite    int32 = 3
	TypeEndOfSession int32 = 2

	TypeAddCommentary             int32 = 27
	TypeSetSessionType            int32 = 34
	TypeSetSessionStatus          int32 = 58867632
	TypeSetRaceLapNumber          int32 = -57818482
	TypeSpeedCapture              int32 = 63644251
	TypeRawSpeedCapture           int32 = 63694251
	TypeSetRemainingSessionTime   int32 = 32
	TypeSetElapsedSessionTime     int32 = 29
	TypeStartSessionTimeCountdown int32 = -63715761
	TypeStopSessionTimeCountdown  int32 = 63715761
	TypeSetMinRequiredQuallyTime  int32 = 63565184

	TypeSetWindSpeed           int32 = 44
	TypeSetAirTemperature      int32 = 16613064
	TypeSetTrackTemperature    int32 = 45
	TypeSetHumidity            int32 = -81152176
	TypeSetAtmosphericPressure int32 = 39
	TypeSetIsWet               int32 = 72954222
	TypeSetWindAngle           int32 = 91304368

	TypeSetStreamTimestamp  int32 = 24
	TypeSetCopyright        int32 = 40380621
	TypeSetKeyframe         int32 = 21
	TypeSetStreamValidity   int32 = 25
	TypeSetPingInterval     int32 = 91507218
	TypeSetSystemMessage    int32 = -2058583
	TypeSetNextMessageDelay int32 = 22

	TypeSetDriverName           int32 = -9752615
	TypeSetDriverCarNumber      int32 = -47573943
	TypeSetDriverPosition       int32 = 13097688
	TypeSetDriverStatus         int32 = 16
	TypeSetDriverLapTime        int32 = -68954098
	TypeReplaceDriverLapTime    int32 = -73336549
	TypeSetDriverSectorTime     int32 = 14
	TypeReplaceDriverSectorTime int32 = -91873925
	TypeSetDriverQuallyTime     int32 = 13
	TypeSetDriverSpeed          int32 = 15
	TypeSetDriverGap            int32 = 5
	TypeSetDriverInterval       int32 = 6
	TypeSetDriverLapNumber      int32 = 59519632
	TypeSetDriverPitCount       int32 = 31968328
	TypeSetDriverPitTime        int32 = 11
	TypeSetGridColumnValue      int32 = 9626017
	TypeSetGridColumnColour     int32 = 17
	TypeClearGridRow            int32 = 96429822
)

func (*PostedTime) TypeID() int32 { return TypePostedTime }
func (*TimeGap) TypeID() int32    { return TypeTimeGap }
func (*LapGap) TypeID() int32     { return TypeLapGap }
func (*SpeedEntry) TypeID() int32 { return TypeSpeedEntry }

func (*Composite) TypeID() int32    { return TypeComposite }
func (*EndOfSession) TypeID() int32 { return TypeEndOfSession }

func (*AddCommentary) TypeID() int32             { return TypeAddCommentary }
func (*SetSessionType) TypeID() int32            { return TypeSetSessionType }
func (*SetSessionStatus) TypeID() int32          { return TypeSetSessionStatus }
func (*SetRaceLapNumber) TypeID() int32          { return TypeSetRaceLapNumber }
func (*SpeedCapture) TypeID() int32              { return TypeSpeedCapture }
func (*RawSpeedCapture) TypeID() int32           { return TypeRawSpeedCapture }
func (*SetRemainingSessionTime) TypeID() int32   { return TypeSetRemainingSessionTime }
func (*SetElapsedSessionTime) TypeID() int32     { return TypeSetElapsedSessionTime }
func (*StartSessionTimeCountdown) TypeID() int32 { return TypeStartSessionTimeCountdown }
func (*StopSessionTimeCountdown) TypeID() int32  { return TypeStopSessionTimeCountdown }
func (*SetMinRequiredQuallyTime) TypeID() int32  { return TypeSetMinRequiredQuallyTime }

func (*SetWindSpeed) TypeID() int32           { return TypeSetWindSpeed }
func (*SetAirTemperature) TypeID() int32      { return TypeSetAirTemperature }
func (*SetTrackTemperature) TypeID() int32    { return TypeSetTrackTemperature }
func (*SetHumidity) TypeID() int32            { return TypeSetHumidity }
func (*SetAtmosphericPressure) TypeID() int32 { return TypeSetAtmosphericPressure }
func (*SetIsWet) TypeID() int32               { return TypeSetIsWet }
func (*SetWindAngle) TypeID() int32           { return TypeSetWindAngle }

func (*SetStreamTimestamp) TypeID() int32  { return TypeSetStreamTimestamp }
func (*SetCopyright) TypeID() int32        { return TypeSetCopyright }
func (*SetKeyframe) TypeID() int32         { return TypeSetKeyframe }
func (*SetStreamValidity) TypeID() int32   { return TypeSetStreamValidity }
func (*SetPingInterval) TypeID() int32     { return TypeSetPingInterval }
func (*SetSystemMessage) TypeID() int32    { return TypeSetSystemMessage }
func (*SetNextMessageDelay) TypeID() int32 { return TypeSetNextMessageDelay }

func (*SetDriverName) TypeID() int32           { return TypeSetDriverName }
func (*SetDriverCarNumber) TypeID() int32      { return TypeSetDriverCarNumber }
func (*SetDriverPosition) TypeID() int32       { return TypeSetDriverPosition }
func (*SetDriverStatus) TypeID() int32         { return TypeSetDriverStatus }
func (*SetDriverLapTime) TypeID() int32        { return TypeSetDriverLapTime }
func (*ReplaceDriverLapTime) TypeID() int32    { return TypeReplaceDriverLapTime }
func (*SetDriverSectorTime) TypeID() int32     { return TypeSetDriverSectorTime }
func (*ReplaceDriverSectorTime) TypeID() int32 { return TypeReplaceDriverSectorTime }
func (*SetDriverQuallyTime) TypeID() int32     { return TypeSetDriverQuallyTime }
func (*SetDriverSpeed) TypeID() int32          { return TypeSetDriverSpeed }
func (*SetDriverGap) TypeID() int32            { return TypeSetDriverGap }
func (*SetDriverInterval) TypeID() int32       { return TypeSetDriverInterval }
func (*SetDriverLapNumber) TypeID() int32      { return TypeSetDriverLapNumber }
func (*SetDriverPitCount) TypeID() int32       { return TypeSetDriverPitCount }
func (*SetDriverPitTime) TypeID() int32        { return TypeSetDriverPitTime }
func (*SetGridColumnValue) TypeID() int32      { return TypeSetGridColumnValue }
func (*SetGridColumnColour) TypeID() int32     { return TypeSetGridColumnColour }
func (*ClearGridRow) TypeID() int32            { return TypeClearGridRow }

func (*Composite) isMessage()                 {}
func (*EndOfSession) isMessage()              {}
func (*AddCommentary) isMessage()             {}
func (*SetSessionType) isMessage()            {}
func (*SetSessionStatus) isMessage()          {}
func (*SetRaceLapNumber) isMessage()          {}
func (*SpeedCapture) isMessage()              {}
func (*RawSpeedCapture) isMessage()           {}
func (*SetRemainingSessionTime) isMessage()   {}
func (*SetElapsedSessionTime) isMessage()     {}
func (*StartSessionTimeCountdown) isMessage() {}
func (*StopSessionTimeCountdown) isMessage()  {}
func (*SetMinRequiredQuallyTime) isMessage()  {}
func (*SetWindSpeed) isMessage()              {}
func (*SetAirTemperature) isMessage()         {}
func (*SetTrackTemperature) isMessage()       {}
func (*SetHumidity) isMessage()               {}
func (*SetAtmosphericPressure) isMessage()    {}
func (*SetIsWet) isMessage()                  {}
func (*SetWindAngle) isMessage()              {}
func (*SetStreamTimestamp) isMessage()        {}
func (*SetCopyright) isMessage()              {}
func (*SetKeyframe) isMessage()               {}
func (*SetStreamValidity) isMessage()         {}
func (*SetPingInterval) isMessage()           {}
func (*SetSystemMessage) isMessage()          {}
func (*SetNextMessageDelay) isMessage()       {}
func (*SetDriverName) isMessage()             {}
func (*SetDriverCarNumber) isMessage()        {}
func (*SetDriverPosition) isMessage()         {}
func (*SetDriverStatus) isMessage()           {}
func (*SetDriverLapTime) isMessage()          {}
func (*ReplaceDriverLapTime) isMessage()      {}
func (*SetDriverSectorTime) isMessage()       {}
func (*ReplaceDriverSectorTime) isMessage()   {}
func (*SetDriverQuallyTime) isMessage()       {}
func (*SetDriverSpeed) isMessage()            {}
func (*SetDriverGap) isMessage()              {}
func (*SetDriverInterval) isMessage()         {}
func (*SetDriverLapNumber) isMessage()        {}
func (*SetDriverPitCount) isMessage()         {}
func (*SetDriverPitTime) isMessage()          {}
func (*SetGridColumnValue) isMessage()        {}
func (*SetGridColumnColour) isMessage()       {}
func (*ClearGridRow) isMessage()              {}

func (m *SetDriverName) Driver() int           { return m.DriverID }
func (m *SetDriverCarNumber) Driver() int      { return m.DriverID }
func (m *SetDriverPosition) Driver() int       { return m.DriverID }
func (m *SetDriverStatus) Driver() int         { return m.DriverID }
func (m *SetDriverLapTime) Driver() int        { return m.DriverID }
func (m *ReplaceDriverLapTime) Driver() int    { return m.DriverID }
func (m *SetDriverSectorTime) Driver() int     { return m.DriverID }
func (m *ReplaceDriverSectorTime) Driver() int { return m.DriverID }
func (m *SetDriverQuallyTime) Driver() int     { return m.DriverID }
func (m *SetDriverSpeed) Driver() int          { return m.DriverID }
func (m *SetDriverGap) Driver() int            { return m.DriverID }
func (m *SetDriverInterval) Driver() int       { return m.DriverID }
func (m *SetDriverLapNumber) Driver() int      { return m.DriverID }
func (m *SetDriverPitCount) Driver() int       { return m.DriverID }
func (m *SetDriverPitTime) Driver() int        { return m.DriverID }
func (m *SetGridColumnValue) Driver() int      { return m.DriverID }
func (m *SetGridColumnColour) Driver() int     { return m.DriverID }
func (m *ClearGridRow) Driver() int            { return m.DriverID }

func init() {
	// Nested value objects
	register(TypePostedTime, "PostedTime", func() Object { return &PostedTime{} },
		intField(0, "LapNumber", func(v *PostedTime) *int { return &v.LapNumber }),
		durationField(1, "Time", func(v *PostedTime) *time.Duration { return &v.Time }),
		intField(2, "Type", func(v *PostedTime) *PostedTimeType { return &v.Type }),
	)
	register(TypeTimeGap, "TimeGap", func() Object { return &TimeGap{} },
		durationField(0, "Time", func(v *TimeGap) *time.Duration { return &v.Time }),
	)
	register(TypeLapGap, "LapGap", func() Object { return &LapGap{} },
		intField(0, "Laps", func(v *LapGap) *int { return &v.Laps }),
	)
	register(TypeSpeedEntry, "SpeedEntry", func() Object { return &SpeedEntry{} },
		stringField(0, "DriverName", func(v *SpeedEntry) *string { return &v.DriverName }),
		intField(1, "Speed", func(v *SpeedEntry) *int { return &v.Speed }),
	)

	// Structural
	register(TypeComposite, "Composite", func() Object { return &Composite{} },
		listField(0, "Messages", func(m *Composite) *[]Message { return &m.Messages }),
	)
	register(TypeEndOfSession, "EndOfSession", func() Object { return &EndOfSession{} })

	// Session
	register(TypeAddCommentary, "AddCommentary", func() Object { return &AddCommentary{} },
		stringField(0, "Commentary", func(m *AddCommentary) *string { return &m.Commentary }),
	)
	register(TypeSetSessionType, "SetSessionType", func() Object { return &SetSessionType{} },
		intField(0, "SessionType", func(m *SetSessionType) *SessionType { return &m.SessionType }),
		stringField(1, "SessionID", func(m *SetSessionType) *string { return &m.SessionID }),
	)
	register(TypeSetSessionStatus, "SetSessionStatus", func() Object { return &SetSessionStatus{} },
		intField(0, "SessionStatus", func(m *SetSessionStatus) *SessionStatus { return &m.SessionStatus }),
	)
	register(TypeSetRaceLapNumber, "SetRaceLapNumber", func() Object { return &SetRaceLapNumber{} },
		intField(0, "LapNumber", func(m *SetRaceLapNumber) *int { return &m.LapNumber }),
	)
	register(TypeSpeedCapture, "SpeedCapture", func() Object { return &SpeedCapture{} },
		intField(0, "Location", func(m *SpeedCapture) *SpeedCaptureLocation { return &m.Location }),
		listField(1, "Speeds", func(m *SpeedCapture) *[]*SpeedEntry { return &m.Speeds }),
	)
	register(TypeRawSpeedCapture, "RawSpeedCapture", func() Object { return &RawSpeedCapture{} },
		intField(0, "Location", func(m *RawSpeedCapture) *SpeedCaptureLocation { return &m.Location }),
		stringField(1, "Speeds", func(m *RawSpeedCapture) *string { return &m.Speeds }),
	)
	register(TypeSetRemainingSessionTime, "SetRemainingSessionTime", func() Object { return &SetRemainingSessionTime{} },
		durationField(0, "Remaining", func(m *SetRemainingSessionTime) *time.Duration { return &m.Remaining }),
	)
	register(TypeSetElapsedSessionTime, "SetElapsedSessionTime", func() Object { return &SetElapsedSessionTime{} },
		durationField(0, "Elapsed", func(m *SetElapsedSessionTime) *time.Duration { return &m.Elapsed }),
	)
	register(TypeStartSessionTimeCountdown, "StartSessionTimeCountdown", func() Object { return &StartSessionTimeCountdown{} })
	register(TypeStopSessionTimeCountdown, "StopSessionTimeCountdown", func() Object { return &StopSessionTimeCountdown{} })
	register(TypeSetMinRequiredQuallyTime, "SetMinRequiredQuallyTime", func() Object { return &SetMinRequiredQuallyTime{} },
		durationField(0, "Time", func(m *SetMinRequiredQuallyTime) *time.Duration { return &m.Time }),
	)

	// Weather
	register(TypeSetWindSpeed, "SetWindSpeed", func() Object { return &SetWindSpeed{} },
		floatField(0, "Speed", func(m *SetWindSpeed) *float64 { return &m.Speed }),
	)
	register(TypeSetAirTemperature, "SetAirTemperature", func() Object { return &SetAirTemperature{} },
		floatField(0, "Temperature", func(m *SetAirTemperature) *float64 { return &m.Temperature }),
	)
	register(TypeSetTrackTemperature, "SetTrackTemperature", func() Object { return &SetTrackTemperature{} },
		floatField(0, "Temperature", func(m *SetTrackTemperature) *float64 { return &m.Temperature }),
	)
	register(TypeSetHumidity, "SetHumidity", func() Object { return &SetHumidity{} },
		floatField(0, "Humidity", func(m *SetHumidity) *float64 { return &m.Humidity }),
	)
	register(TypeSetAtmosphericPressure, "SetAtmosphericPressure", func() Object { return &SetAtmosphericPressure{} },
		floatField(0, "Pressure", func(m *SetAtmosphericPressure) *float64 { return &m.Pressure }),
	)
	register(TypeSetIsWet, "SetIsWet", func() Object { return &SetIsWet{} },
		boolField(0, "IsWet", func(m *SetIsWet) *bool { return &m.IsWet }),
	)
	register(TypeSetWindAngle, "SetWindAngle", func() Object { return &SetWindAngle{} },
		intField(0, "Angle", func(m *SetWindAngle) *int { return &m.Angle }),
	)

	// Feed
	register(TypeSetStreamTimestamp, "SetStreamTimestamp", func() Object { return &SetStreamTimestamp{} },
		intField(0, "Timestamp", func(m *SetStreamTimestamp) *int64 { return &m.Timestamp }),
	)
	register(TypeSetCopyright, "SetCopyright", func() Object { return &SetCopyright{} },
		stringField(0, "Copyright", func(m *SetCopyright) *string { return &m.Copyright }),
	)
	register(TypeSetKeyframe, "SetKeyframe", func() Object { return &SetKeyframe{} },
		intField(0, "Keyframe", func(m *SetKeyframe) *int { return &m.Keyframe }),
	)
	register(TypeSetStreamValidity, "SetStreamValidity", func() Object { return &SetStreamValidity{} },
		boolField(0, "IsValid", func(m *SetStreamValidity) *bool { return &m.IsValid }),
	)
	register(TypeSetPingInterval, "SetPingInterval", func() Object { return &SetPingInterval{} },
		durationField(0, "PingInterval", func(m *SetPingInterval) *time.Duration { return &m.PingInterval }),
	)
	register(TypeSetSystemMessage, "SetSystemMessage", func() Object { return &SetSystemMessage{} },
		stringField(0, "Message", func(m *SetSystemMessage) *string { return &m.Message }),
	)
	register(TypeSetNextMessageDelay, "SetNextMessageDelay", func() Object { return &SetNextMessageDelay{} },
		durationField(0, "Delay", func(m *SetNextMessageDelay) *time.Duration { return &m.Delay }),
	)

	// Driver
	register(TypeSetDriverName, "SetDriverName", func() Object { return &SetDriverName{} },
		intField(0, "DriverID", func(m *SetDriverName) *int { return &m.DriverID }),
		stringField(1, "DriverName", func(m *SetDriverName) *string { return &m.DriverName }),
	)
	register(TypeSetDriverCarNumber, "SetDriverCarNumber", func() Object { return &SetDriverCarNumber{} },
		intField(0, "DriverID", func(m *SetDriverCarNumber) *int { return &m.DriverID }),
		intField(1, "CarNumber", func(m *SetDriverCarNumber) *int { return &m.CarNumber }),
	)
	register(TypeSetDriverPosition, "SetDriverPosition", func() Object { return &SetDriverPosition{} },
		intField(0, "DriverID", func(m *SetDriverPosition) *int { return &m.DriverID }),
		intField(1, "Position", func(m *SetDriverPosition) *int { return &m.Position }),
	)
	register(TypeSetDriverStatus, "SetDriverStatus", func() Object { return &SetDriverStatus{} },
		intField(0, "DriverID", func(m *SetDriverStatus) *int { return &m.DriverID }),
		intField(1, "DriverStatus", func(m *SetDriverStatus) *DriverStatus { return &m.DriverStatus }),
	)
	register(TypeSetDriverLapTime, "SetDriverLapTime", func() Object { return &SetDriverLapTime{} },
		intField(0, "DriverID", func(m *SetDriverLapTime) *int { return &m.DriverID }),
		objectField(1, "LapTime", func(m *SetDriverLapTime) **PostedTime { return &m.LapTime }),
	)
	register(TypeReplaceDriverLapTime, "ReplaceDriverLapTime", func() Object { return &ReplaceDriverLapTime{} },
		intField(0, "DriverID", func(m *ReplaceDriverLapTime) *int { return &m.DriverID }),
		objectField(1, "Replacement", func(m *ReplaceDriverLapTime) **PostedTime { return &m.Replacement }),
	)
	register(TypeSetDriverSectorTime, "SetDriverSectorTime", func() Object { return &SetDriverSectorTime{} },
		intField(0, "DriverID", func(m *SetDriverSectorTime) *int { return &m.DriverID }),
		intField(1, "SectorNumber", func(m *SetDriverSectorTime) *int { return &m.SectorNumber }),
		objectField(2, "SectorTime", func(m *SetDriverSectorTime) **PostedTime { return &m.SectorTime }),
	)
	register(TypeReplaceDriverSectorTime, "ReplaceDriverSectorTime", func() Object { return &ReplaceDriverSectorTime{} },
		intField(0, "DriverID", func(m *ReplaceDriverSectorTime) *int { return &m.DriverID }),
		intField(1, "SectorNumber", func(m *ReplaceDriverSectorTime) *int { return &m.SectorNumber }),
		objectField(2, "Replacement", func(m *ReplaceDriverSectorTime) **PostedTime { return &m.Replacement }),
	)
	register(TypeSetDriverQuallyTime, "SetDriverQuallyTime", func() Object { return &SetDriverQuallyTime{} },
		intField(0, "DriverID", func(m *SetDriverQuallyTime) *int { return &m.DriverID }),
		durationField(1, "QuallyTime", func(m *SetDriverQuallyTime) *time.Duration { return &m.QuallyTime }),
		intField(2, "QuallyNumber", func(m *SetDriverQuallyTime) *int { return &m.QuallyNumber }),
	)
	register(TypeSetDriverSpeed, "SetDriverSpeed", func() Object { return &SetDriverSpeed{} },
		intField(0, "DriverID", func(m *SetDriverSpeed) *int { return &m.DriverID }),
		intField(1, "Location", func(m *SetDriverSpeed) *SpeedCaptureLocation { return &m.Location }),
		intField(2, "Speed", func(m *SetDriverSpeed) *int { return &m.Speed }),
	)
	register(TypeSetDriverGap, "SetDriverGap", func() Object { return &SetDriverGap{} },
		intField(0, "DriverID", func(m *SetDriverGap) *int { return &m.DriverID }),
		objectField(1, "Gap", func(m *SetDriverGap) *Gap { return &m.Gap }),
	)
	register(TypeSetDriverInterval, "SetDriverInterval", func() Object { return &SetDriverInterval{} },
		intField(0, "DriverID", func(m *SetDriverInterval) *int { return &m.DriverID }),
		objectField(1, "Interval", func(m *SetDriverInterval) *Gap { return &m.Interval }),
	)
	register(TypeSetDriverLapNumber, "SetDriverLapNumber", func() Object { return &SetDriverLapNumber{} },
		intField(0, "DriverID", func(m *SetDriverLapNumber) *int { return &m.DriverID }),
		intField(1, "LapNumber", func(m *SetDriverLapNumber) *int { return &m.LapNumber }),
	)
	register(TypeSetDriverPitCount, "SetDriverPitCount", func() Object { return &SetDriverPitCount{} },
		intField(0, "DriverID", func(m *SetDriverPitCount) *int { return &m.DriverID }),
		intField(1, "PitCount", func(m *SetDriverPitCount) *int { return &m.PitCount }),
	)
	register(TypeSetDriverPitTime, "SetDriverPitTime", func() Object { return &SetDriverPitTime{} },
		intField(0, "DriverID", func(m *SetDriverPitTime) *int { return &m.DriverID }),
		objectField(1, "PitTime", func(m *SetDriverPitTime) **PostedTime { return &m.PitTime }),
	)
	register(TypeSetGridColumnValue, "SetGridColumnValue", func() Object { return &SetGridColumnValue{} },
		intField(0, "DriverID", func(m *SetGridColumnValue) *int { return &m.DriverID }),
		intField(1, "Column", func(m *SetGridColumnValue) *GridColumn { return &m.Column }),
		intField(2, "Colour", func(m *SetGridColumnValue) *GridColumnColour { return &m.Colour }),
		stringField(3, "Value", func(m *SetGridColumnValue) *string { return &m.Value }),
	)
	register(TypeSetGridColumnColour, "SetGridColumnColour", func() Object { return &SetGridColumnColour{} },
		intField(0, "DriverID", func(m *SetGridColumnColour) *int { return &m.DriverID }),
		intField(1, "Column", func(m *SetGridColumnColour) *GridColumn { return &m.Column }),
		intField(2, "Colour", func(m *SetGridColumnColour) *GridColumnColour { return &m.Colour }),
	)
	register(TypeClearGridRow, "ClearGridRow", func() Object { return &ClearGridRow{} },
		intField(0, "DriverID", func(m *ClearGridRow) *int { return &m.DriverID }),
	)
}
