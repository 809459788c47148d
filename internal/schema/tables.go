package schema

import (
	"time"

	"storeroom_backend/internal/domain"
	"storeroom_backend/platform/phone"
)

// Domain field names used by callers to filter and to patch records.
const (
	FieldEmail                  = "email"
	FieldName                   = "name"
	FieldPhone                  = "phone"
	FieldAddress                = "address"
	FieldPlan                   = "plan"
	FieldUsedCubicFeet          = "usedCubicFeet"
	FieldUsedInsuredCents       = "usedInsuredCents"
	FieldActiveItemCount        = "activeItemCount"
	FieldPaymentCustomerID      = "paymentCustomerId"
	FieldSubscriptionID         = "subscriptionId"
	FieldSubscriptionStatus     = "subscriptionStatus"
	FieldSetupFeePaid           = "setupFeePaid"
	FieldSetupFeeCents          = "setupFeeCents"
	FieldSetupFeeWaiverReason   = "setupFeeWaiverReason"
	FieldFirstPickupCompletedAt = "firstPickupCompletedAt"
	FieldPlanVolumeCap          = "planVolumeCap"
	FieldPlanInsuranceCap       = "planInsuranceCap"

	FieldCustomerID     = "customerId"
	FieldLength         = "lengthIn"
	FieldWidth          = "widthIn"
	FieldHeight         = "heightIn"
	FieldWeight         = "weightLbs"
	FieldCubicFeet      = "cubicFeet"
	FieldEstimatedValue = "estimatedValueCents"
	FieldCategory       = "category"
	FieldContainerType  = "containerType"
	FieldStatus         = "status"
	FieldPhotoURLs      = "photoUrls"
	FieldReturnVisitID  = "returnVisitId"

	FieldType            = "type"
	FieldItemIDs         = "itemIds"
	FieldDate            = "date"
	FieldWindow          = "window"
	FieldTotalCubicFeet  = "totalCubicFeet"
	FieldTotalWeight     = "totalWeightLbs"
	FieldItemCount       = "itemCount"
	FieldInstructions    = "instructions"
	FieldTriggersBilling = "triggersBilling"
	FieldQuotedPrice     = "quotedPriceCents"
	FieldVehicleTier     = "vehicleTier"
	FieldDuration        = "durationMinutes"
	FieldRush            = "rush"
	FieldCompletedAt     = "completedAt"
	FieldDriverNotes     = "driverNotes"
	FieldCancelledAt     = "cancelledAt"

	FieldVisitID  = "visitId"
	FieldPriority = "priority"
	FieldAction   = "action"
	FieldDueDate  = "dueDate"
)

const (
	v1 = VersionLegacy
	v2 = VersionCurrent
)

var (
	planCurrent = Enum(map[string]string{"starter": "Starter", "medium": "Medium", "family": "Family"})
	planLegacy  = Enum(map[string]string{"starter": "starter", "medium": "medium", "family": "family"})

	subscriptionStatuses = Enum(map[string]string{
		"none": "None", "active": "Active", "paused": "Paused", "cancelled": "Cancelled",
	})

	itemStatusCurrent = Enum(map[string]string{"at_home": "At Home", "in_transit": "In Transit", "in_storage": "In Storage"})
	itemStatusLegacy  = Enum(map[string]string{"at_home": "home", "in_transit": "transit", "in_storage": "stored"})

	visitTypeCurrent = Enum(map[string]string{"pickup": "Pickup", "delivery": "Delivery", "container_delivery": "Container Delivery"})
	visitTypeLegacy  = Enum(map[string]string{"pickup": "pickup", "delivery": "delivery", "container_delivery": "container_delivery"})

	windowCurrent = Enum(map[string]string{
		"morning": "Morning (8-11)", "midday": "Midday (11-2)",
		"afternoon": "Afternoon (2-5)", "weekend": "Weekend Premium (9-12)",
	})
	windowLegacy = Enum(map[string]string{
		"morning": "8am-11am", "midday": "11am-2pm",
		"afternoon": "2pm-5pm", "weekend": "Weekend 9am-12pm",
	})

	visitStatusCurrent = Enum(map[string]string{
		"scheduled": "Scheduled", "in_progress": "In Progress", "completed": "Completed", "cancelled": "Cancelled",
	})
	visitStatusLegacy = Enum(map[string]string{
		"scheduled": "scheduled", "in_progress": "in_progress", "completed": "completed", "cancelled": "cancelled",
	})

	vehicleTiers = Enum(map[string]string{"small": "Small Van", "medium": "Box Truck", "large": "Large Truck"})

	taskPriorities = Enum(map[string]string{"low": "Low", "normal": "Normal", "high": "High", "urgent": "Urgent"})
	taskStatuses   = Enum(map[string]string{"pending": "Pending", "done": "Done"})
)

// Customers describes the Customers table.
var Customers = New("Customers",
	func(c *domain.Customer) *string { return &c.ID },
	func(c *domain.Customer) *time.Time { return &c.CreatedAt },

	String(FieldEmail, func(c *domain.Customer) *string { return &c.Email }).
		Both("Email", Text).Require(),
	String(FieldName, func(c *domain.Customer) *string { return &c.Name }).
		In(v2, "Full Name", Text).In(v1, "Name", Text).Require(),
	String(FieldPhone, func(c *domain.Customer) *string { return &c.Phone }).
		In(v2, "Phone", Text).In(v1, "Phone Number", Text),
	String(FieldAddress, func(c *domain.Customer) *string { return &c.Address }).
		In(v2, "Service Address", Text).In(v1, "Address", Text),
	String(FieldPlan, func(c *domain.Customer) *domain.PlanTier { return &c.Plan }).
		In(v2, "Plan Tier", planCurrent).In(v1, "Plan", planLegacy).
		Require().Default(string(domain.PlanStarter)),
	Float(FieldPlanVolumeCap, func(c *domain.Customer) *float64 { return &c.Limits.VolumeCapCubicFeet }).
		Computed(v2, "Plan Volume Limit", Number),
	Money(FieldPlanInsuranceCap, func(c *domain.Customer) *int64 { return &c.Limits.InsuranceCapCents }).
		Computed(v2, "Plan Insurance Limit", Cents),
	Float(FieldUsedCubicFeet, func(c *domain.Customer) *float64 { return &c.UsedCubicFeet }).
		In(v2, "Used Cubic Feet", Number).In(v1, "Storage Used", Number),
	Money(FieldUsedInsuredCents, func(c *domain.Customer) *int64 { return &c.UsedInsuredCents }).
		In(v2, "Used Insured Value", Cents),
	Int(FieldActiveItemCount, func(c *domain.Customer) *int { return &c.ActiveItemCount }).
		In(v2, "Active Items", Integer),
	String(FieldPaymentCustomerID, func(c *domain.Customer) *string { return &c.PaymentCustomerID }).
		In(v2, "Payment Customer ID", Text).In(v1, "Stripe Customer", Text),
	String(FieldSubscriptionID, func(c *domain.Customer) *string { return &c.SubscriptionID }).
		In(v2, "Subscription ID", Text).In(v1, "Stripe Subscription", Text),
	String(FieldSubscriptionStatus, func(c *domain.Customer) *domain.SubscriptionStatus { return &c.SubscriptionStatus }).
		In(v2, "Subscription Status", subscriptionStatuses).Default(string(domain.SubscriptionNone)),
	Bool(FieldSetupFeePaid, func(c *domain.Customer) *bool { return &c.SetupFeePaid }).
		In(v2, "Setup Fee Paid", YesNo).In(v1, "Setup Fee Paid", Checkbox),
	Money(FieldSetupFeeCents, func(c *domain.Customer) *int64 { return &c.SetupFeeCents }).
		In(v2, "Setup Fee Amount", Cents).In(v1, "Setup Fee", Cents),
	String(FieldSetupFeeWaiverReason, func(c *domain.Customer) *string { return &c.SetupFeeWaiverReason }).
		In(v2, "Setup Fee Waiver Reason", Text),
	OptionalTime(FieldFirstPickupCompletedAt, func(c *domain.Customer) **time.Time { return &c.FirstPickupCompletedAt }).
		In(v2, "First Pickup Completed At", Timestamp).In(v1, "First Pickup Date", Date),
).WithHooks(func(c *domain.Customer) {
	c.Limits = c.Plan.Limits()
}, func(c *domain.Customer) {
	c.Phone = phone.NormalizeE164(c.Phone)
})

// Items describes the Items table.
var Items = New("Items",
	func(i *domain.Item) *string { return &i.ID },
	func(i *domain.Item) *time.Time { return &i.CreatedAt },

	String(FieldCustomerID, func(i *domain.Item) *string { return &i.CustomerID }).
		In(v2, "Customer", Link).In(v1, "Customer ID", Text).Require(),
	String(FieldName, func(i *domain.Item) *string { return &i.Name }).
		In(v2, "Item Name", Text).In(v1, "Name", Text).Require(),
	Float(FieldLength, func(i *domain.Item) *float64 { return &i.LengthIn }).
		In(v2, "Length (in)", Number).In(v1, "Length", Number).Default(domain.MinimumBoxInches),
	Float(FieldWidth, func(i *domain.Item) *float64 { return &i.WidthIn }).
		In(v2, "Width (in)", Number).In(v1, "Width", Number).Default(domain.MinimumBoxInches),
	Float(FieldHeight, func(i *domain.Item) *float64 { return &i.HeightIn }).
		In(v2, "Height (in)", Number).In(v1, "Height", Number).Default(domain.MinimumBoxInches),
	Float(FieldWeight, func(i *domain.Item) *float64 { return &i.WeightLbs }).
		In(v2, "Weight (lbs)", Number).In(v1, "Weight", Number),
	Float(FieldCubicFeet, func(i *domain.Item) *float64 { return &i.CubicFeet }).
		Both("Cubic Feet", Number),
	Money(FieldEstimatedValue, func(i *domain.Item) *int64 { return &i.EstimatedValueCents }).
		In(v2, "Estimated Value", Cents).In(v1, "Value", Cents),
	String(FieldCategory, func(i *domain.Item) *string { return &i.Category }).
		Both("Category", Text),
	String(FieldContainerType, func(i *domain.Item) *string { return &i.ContainerType }).
		In(v2, "Container Type", Text).In(v1, "Box Type", Text),
	String(FieldStatus, func(i *domain.Item) *domain.ItemStatus { return &i.Status }).
		In(v2, "Status", itemStatusCurrent).In(v1, "Status", itemStatusLegacy).
		Default(string(domain.ItemAtHome)),
	Strings(FieldPhotoURLs, func(i *domain.Item) *[]string { return &i.PhotoURLs }).
		In(v2, "Photo URLs", CommaList).In(v1, "Photos", Attachments),
	String(FieldReturnVisitID, func(i *domain.Item) *string { return &i.ReturnVisitID }).
		In(v2, "Scheduled Return", Link),
).WithHooks((*domain.Item).Recompute, (*domain.Item).Recompute)

// Visits describes the Movements table.
var Visits = New("Movements",
	func(v *domain.Visit) *string { return &v.ID },
	func(v *domain.Visit) *time.Time { return &v.CreatedAt },

	String(FieldCustomerID, func(v *domain.Visit) *string { return &v.CustomerID }).
		In(v2, "Customer", Link).In(v1, "Customer ID", Text).Require(),
	String(FieldType, func(v *domain.Visit) *domain.VisitType { return &v.Type }).
		In(v2, "Type", visitTypeCurrent).In(v1, "Type", visitTypeLegacy).Require(),
	Strings(FieldItemIDs, func(v *domain.Visit) *[]string { return &v.ItemIDs }).
		In(v2, "Items", Links).In(v1, "Item IDs", CommaList),
	Time(FieldDate, func(v *domain.Visit) *time.Time { return &v.Date }).
		In(v2, "Scheduled Date", Date).In(v1, "Date", Date).Require(),
	String(FieldWindow, func(v *domain.Visit) *domain.TimeWindow { return &v.Window }).
		In(v2, "Time Window", windowCurrent).In(v1, "Time Slot", windowLegacy).Require(),
	String(FieldStatus, func(v *domain.Visit) *domain.VisitStatus { return &v.Status }).
		In(v2, "Status", visitStatusCurrent).In(v1, "Status", visitStatusLegacy).
		Default(string(domain.VisitScheduled)),
	Float(FieldTotalCubicFeet, func(v *domain.Visit) *float64 { return &v.TotalCubicFeet }).
		In(v2, "Total Cubic Feet", Number).In(v1, "Total Volume", Number),
	Float(FieldTotalWeight, func(v *domain.Visit) *float64 { return &v.TotalWeightLbs }).
		In(v2, "Total Weight", Number),
	Int(FieldItemCount, func(v *domain.Visit) *int { return &v.ItemCount }).
		In(v2, "Item Count", Integer).In(v1, "Number of Items", Integer),
	String(FieldAddress, func(v *domain.Visit) *string { return &v.Address }).
		In(v2, "Service Address", Text).In(v1, "Address", Text),
	String(FieldInstructions, func(v *domain.Visit) *string { return &v.Instructions }).
		In(v2, "Special Instructions", Text).In(v1, "Notes", Text),
	Bool(FieldTriggersBilling, func(v *domain.Visit) *bool { return &v.TriggersBilling }).
		In(v2, "Triggers Billing", YesNo),
	Money(FieldQuotedPrice, func(v *domain.Visit) *int64 { return &v.QuotedPriceCents }).
		In(v2, "Quoted Price", Cents).In(v1, "Price", Cents),
	String(FieldVehicleTier, func(v *domain.Visit) *domain.VehicleTier { return &v.VehicleTier }).
		In(v2, "Vehicle Size", vehicleTiers),
	Int(FieldDuration, func(v *domain.Visit) *int { return &v.DurationMinutes }).
		In(v2, "Estimated Duration (min)", Integer),
	Bool(FieldRush, func(v *domain.Visit) *bool { return &v.Rush }).
		In(v2, "Rush", YesNo),
	OptionalTime(FieldCompletedAt, func(v *domain.Visit) **time.Time { return &v.CompletedAt }).
		In(v2, "Completed At", Timestamp).In(v1, "Completion Date", Date),
	String(FieldDriverNotes, func(v *domain.Visit) *string { return &v.DriverNotes }).
		In(v2, "Driver Notes", Text),
	OptionalTime(FieldCancelledAt, func(v *domain.Visit) **time.Time { return &v.CancelledAt }).
		In(v2, "Cancelled At", Timestamp),
)

// Tasks describes the Ops Tasks table. Its columns never changed.
var Tasks = New("Ops Tasks",
	func(t *domain.OperationalTask) *string { return &t.ID },
	func(t *domain.OperationalTask) *time.Time { return &t.CreatedAt },

	String(FieldCustomerID, func(t *domain.OperationalTask) *string { return &t.CustomerID }).
		Both("Customer", Link),
	String(FieldVisitID, func(t *domain.OperationalTask) *string { return &t.VisitID }).
		Both("Movement", Link),
	String(FieldPriority, func(t *domain.OperationalTask) *domain.TaskPriority { return &t.Priority }).
		Both("Priority", taskPriorities).Default(string(domain.PriorityNormal)),
	String(FieldAction, func(t *domain.OperationalTask) *string { return &t.Action }).
		Both("Action", Text).Require(),
	Time(FieldDueDate, func(t *domain.OperationalTask) *time.Time { return &t.DueDate }).
		Both("Due Date", Date),
	String(FieldStatus, func(t *domain.OperationalTask) *domain.TaskStatus { return &t.Status }).
		Both("Status", taskStatuses).Default(string(domain.TaskPending)),
)
